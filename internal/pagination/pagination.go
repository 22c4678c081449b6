// Package pagination validates page, size and sort request parameters
// before they reach the repository layer. Each pageable endpoint declares
// a static Constraint; when both lists are empty, sorting is closed.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"ordersapi/internal/domain"
)

const (
	DefaultPage     = 0
	DefaultPageSize = 5
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortTerm struct {
	Field     string
	Direction Direction
}

// Constraint restricts which fields an endpoint accepts in sort terms.
// Defined once per endpoint at startup, never at request time.
type Constraint struct {
	Whitelist []string
	Blacklist []string
}

type PageRequest struct {
	Page int
	Size int
	Sort []SortTerm
}

// Offset is the row offset implied by page and size.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// ValidatePage checks that page and size, when present, parse as
// non-negative integers. Absent values are fine; defaults apply later.
func ValidatePage(rawPage, rawSize string) error {
	if err := checkNonNegativeInt(rawPage, "page"); err != nil {
		return err
	}
	return checkNonNegativeInt(rawSize, "size")
}

func checkNonNegativeInt(raw, field string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return domain.ValidationError{
			Field: field,
			Msg:   fmt.Sprintf("'%s' must be a valid integer, but got: %s", field, raw),
		}
	}
	if n < 0 {
		return domain.ValidationError{
			Field: field,
			Msg:   fmt.Sprintf("'%s' must be >= 0, but got: %s", field, raw),
		}
	}
	return nil
}

// ParseSortParams parses repeated "field,direction" parameters.
// Direction is optional and defaults to asc. Blank entries are skipped.
func ParseSortParams(raw []string) ([]SortTerm, error) {
	var terms []SortTerm
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ",")
		field := strings.TrimSpace(parts[0])
		if field == "" {
			continue
		}
		dir := Asc
		if len(parts) > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "", "asc":
				dir = Asc
			case "desc":
				dir = Desc
			default:
				return nil, domain.ValidationError{
					Field: "sort",
					Msg:   fmt.Sprintf("invalid sort direction '%s' for field '%s'", parts[1], field),
				}
			}
		}
		terms = append(terms, SortTerm{Field: field, Direction: dir})
	}
	return terms, nil
}

// ValidateSort applies the constraint to the submitted terms in order and
// fails on the first violation. With both lists empty any sorting at all
// is rejected.
func ValidateSort(c Constraint, terms []SortTerm) error {
	whitelistEmpty := len(c.Whitelist) == 0
	blacklistEmpty := len(c.Blacklist) == 0

	if whitelistEmpty && blacklistEmpty {
		if len(terms) > 0 {
			return domain.ValidationError{Field: "sort", Msg: "sorting is forbidden"}
		}
		return nil
	}

	for _, term := range terms {
		if !whitelistEmpty && !contains(c.Whitelist, term.Field) {
			return domain.ValidationError{
				Field: "sort",
				Msg: fmt.Sprintf("sorting by field '%s' is not allowed. Allowed fields: %s",
					term.Field, fieldSet(c.Whitelist)),
			}
		}
		if !blacklistEmpty && contains(c.Blacklist, term.Field) {
			return domain.ValidationError{
				Field: "sort",
				Msg: fmt.Sprintf("sorting by field '%s' is forbidden. Forbidden fields: %s",
					term.Field, fieldSet(c.Blacklist)),
			}
		}
	}
	return nil
}

// ValidatePageable is the guard pageable handlers call at the top:
// page/size parsing, sort parsing, constraint check, then defaults.
func ValidatePageable(rawPage, rawSize string, rawSort []string, c Constraint) (PageRequest, error) {
	if err := ValidatePage(rawPage, rawSize); err != nil {
		return PageRequest{}, err
	}

	terms, err := ParseSortParams(rawSort)
	if err != nil {
		return PageRequest{}, err
	}

	if err := ValidateSort(c, terms); err != nil {
		return PageRequest{}, err
	}

	req := PageRequest{Page: DefaultPage, Size: DefaultPageSize, Sort: terms}
	if v := strings.TrimSpace(rawPage); v != "" {
		req.Page, _ = strconv.Atoi(v)
	}
	if v := strings.TrimSpace(rawSize); v != "" {
		req.Size, _ = strconv.Atoi(v)
	}
	return req, nil
}

// OrderByClause renders validated sort terms as SQL using the endpoint's
// field-to-column map. Terms whose field is missing from the map are
// dropped; validation upstream makes that unreachable for exposed routes.
func OrderByClause(terms []SortTerm, columns map[string]string) string {
	var parts []string
	for _, term := range terms {
		col, ok := columns[term.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if term.Direction == Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	return strings.Join(parts, ", ")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func fieldSet(list []string) string {
	return "[" + strings.Join(list, ", ") + "]"
}
