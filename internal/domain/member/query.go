package member

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Logical field names. Repositories map them onto columns or document keys.
const (
	FieldName               = "name"
	FieldEmail              = "email"
	FieldRole               = "role"
	FieldPhoneNumber        = "phoneNumber"
	FieldIsActive           = "isActive"
	FieldCreatedAt          = "createdAt"
	FieldLastLoginAt        = "lastLoginAt"
	FieldTotalContributions = "totalContributions"
)

// Criterion is one typed filter of a directory query. The set of variants is
// closed: TextSearch, ExactMatch and ContributionRange.
type Criterion interface {
	criterion()
}

// TextSearch matches Term case-insensitively as a substring of any Field.
type TextSearch struct {
	Fields []string
	Term   string
}

// ExactMatch compares one field for equality. Value is a string, Role or bool.
type ExactMatch struct {
	Field string
	Value any
}

// ContributionRange bounds the computed net contribution, both ends inclusive.
// A nil Max is unbounded.
type ContributionRange struct {
	Min float64
	Max *float64
}

func (TextSearch) criterion()        {}
func (ExactMatch) criterion()        {}
func (ContributionRange) criterion() {}

func (r ContributionRange) Contains(value float64) bool {
	if value < r.Min {
		return false
	}
	return r.Max == nil || value <= *r.Max
}

type Sort struct {
	Field      string
	Descending bool
}

var DefaultSort = Sort{Field: FieldCreatedAt, Descending: true}

type Query struct {
	Criteria []Criterion
	Sort     Sort
}

// StoreCriteria returns the criteria a repository can evaluate on its own.
func (q Query) StoreCriteria() []Criterion {
	result := make([]Criterion, 0, len(q.Criteria))
	for _, c := range q.Criteria {
		if _, ok := c.(ContributionRange); ok {
			continue
		}
		result = append(result, c)
	}
	return result
}

func (q Query) contributionRanges() []ContributionRange {
	var result []ContributionRange
	for _, c := range q.Criteria {
		if r, ok := c.(ContributionRange); ok {
			result = append(result, r)
		}
	}
	return result
}

// ParseContributionRange accepts "min-max" or "min+". Bounds may be negative
// because net contribution drops below zero when withdrawals exceed deposits.
func ParseContributionRange(value string) (ContributionRange, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ContributionRange{}, fmt.Errorf("%w: empty contribution filter", ErrInvalidQuery)
	}

	if strings.HasSuffix(value, "+") {
		lower, err := parseAmount(strings.TrimSuffix(value, "+"))
		if err != nil {
			return ContributionRange{}, fmt.Errorf("%w: contribution filter %q: %v", ErrInvalidQuery, value, err)
		}
		return ContributionRange{Min: lower}, nil
	}

	// The separator is the first dash after the leading character, so a
	// negative min such as "-200-0" still splits.
	sep := strings.Index(value[1:], "-")
	if sep < 0 {
		return ContributionRange{}, fmt.Errorf("%w: contribution filter %q must look like 100-500 or 500+", ErrInvalidQuery, value)
	}
	minStr, maxStr := value[:sep+1], value[sep+2:]
	lower, err := parseAmount(minStr)
	if err != nil {
		return ContributionRange{}, fmt.Errorf("%w: contribution filter %q: %v", ErrInvalidQuery, value, err)
	}
	upper, err := parseAmount(maxStr)
	if err != nil {
		return ContributionRange{}, fmt.Errorf("%w: contribution filter %q: %v", ErrInvalidQuery, value, err)
	}
	if upper < lower {
		return ContributionRange{}, fmt.Errorf("%w: contribution filter %q has max below min", ErrInvalidQuery, value)
	}
	return ContributionRange{Min: lower, Max: &upper}, nil
}

func parseAmount(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	if math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return 0, fmt.Errorf("%q is out of range", value)
	}
	return parsed, nil
}

var sortableFields = map[string]struct{}{
	FieldName:               {},
	FieldEmail:              {},
	FieldRole:               {},
	FieldPhoneNumber:        {},
	FieldIsActive:           {},
	FieldCreatedAt:          {},
	FieldLastLoginAt:        {},
	FieldTotalContributions: {},
}

// ParseSort reads "field-asc" or "field-desc". A missing direction means desc.
func ParseSort(value string) (Sort, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultSort, nil
	}

	field, order, _ := strings.Cut(value, "-")
	if _, ok := sortableFields[field]; !ok {
		return Sort{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, field)
	}

	switch strings.ToLower(order) {
	case "asc":
		return Sort{Field: field}, nil
	case "desc", "":
		return Sort{Field: field, Descending: true}, nil
	default:
		return Sort{}, fmt.Errorf("%w: sort direction %q must be asc or desc", ErrInvalidQuery, order)
	}
}
