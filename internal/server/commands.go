package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/urlquery/internal/errors"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

// Command ops understood by a live session.
const (
	OpSetFilter       = "setFilter"
	OpRemoveFilter    = "removeFilter"
	OpMoveUp          = "moveUp"
	OpMoveDown        = "moveDown"
	OpToggleActive    = "toggleActive"
	OpToggleDirection = "toggleDirection"
	OpSetActive       = "setActive"
	OpSetDirection    = "setDirection"
	OpAddInclude      = "addInclude"
	OpRemoveInclude   = "removeInclude"
	OpSetPage         = "setPage"
	OpClearPage       = "clearPage"
	OpSetPerPage      = "setPerPage"
	OpClearPerPage    = "clearPerPage"
	OpSnapshot        = "snapshot"
)

var errMissingOp = stderrors.New("message has no op")

// Command is a client message. Which fields matter depends on Op.
//
//	{"op": "setFilter", "column": "name", "value": "jhon"}
//	{"op": "moveUp", "column": "title"}
//	{"op": "setDirection", "column": "title", "direction": "desc"}
//	{"op": "addInclude", "names": ["author"]}
//	{"op": "setPage", "value": 2}
type Command struct {
	Op        string          `json:"op"`
	Column    string          `json:"column,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Active    *bool           `json:"active,omitempty"`
	Direction string          `json:"direction,omitempty"`
	Names     []string        `json:"names,omitempty"`
}

// Apply runs cmd against q.
func Apply(q *urlquery.QueryState, cmd Command) error {
	switch cmd.Op {
	case OpSetFilter:
		if cmd.Column == "" || len(cmd.Value) == 0 {
			return malformed("setFilter needs column and value")
		}
		var v urlquery.Value
		if err := json.Unmarshal(cmd.Value, &v); err != nil {
			return errors.New("Q031").Wrap(err)
		}
		q.SetFilter(cmd.Column, v)
	case OpRemoveFilter:
		q.RemoveFilter(cmd.Column)

	case OpMoveUp:
		return sortErr(cmd.Column, q.MoveSortUp(cmd.Column))
	case OpMoveDown:
		return sortErr(cmd.Column, q.MoveSortDown(cmd.Column))
	case OpToggleActive:
		return sortErr(cmd.Column, q.ToggleSortActive(cmd.Column))
	case OpToggleDirection:
		return sortErr(cmd.Column, q.ToggleSortDirection(cmd.Column))
	case OpSetActive:
		if cmd.Active == nil {
			return malformed("setActive needs active")
		}
		return sortErr(cmd.Column, q.SetSortActive(cmd.Column, *cmd.Active))
	case OpSetDirection:
		d, err := urlquery.ParseDirection(cmd.Direction)
		if err != nil {
			return errors.New("Q023").Wrap(err)
		}
		return sortErr(cmd.Column, q.SetSortDirection(cmd.Column, d))

	case OpAddInclude:
		q.AddInclude(cmd.Names...)
	case OpRemoveInclude:
		q.RemoveInclude(cmd.Names...)

	case OpSetPage, OpSetPerPage:
		n, err := pageValue(cmd.Value)
		if err != nil {
			return err
		}
		if cmd.Op == OpSetPage {
			q.SetPage(n)
		} else {
			q.SetPerPage(n)
		}
	case OpClearPage:
		q.ClearPage()
	case OpClearPerPage:
		q.ClearPerPage()

	case OpSnapshot:
	default:
		return errors.New("Q021").WithDetail(fmt.Sprintf("Unknown op %q.", cmd.Op))
	}
	return nil
}

func pageValue(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errors.New("Q011").Wrap(err)
	}
	if n < 0 {
		return 0, errors.New("Q011").WithDetail(fmt.Sprintf("Got %d.", n))
	}
	return n, nil
}

func sortErr(column string, err error) error {
	if stderrors.Is(err, urlquery.ErrSortNotFound) {
		return errors.New("Q022").
			WithDetail(fmt.Sprintf("Sort column %q is not in the sort list.", column)).
			Wrap(err)
	}
	return err
}

func malformed(detail string) error {
	return errors.New("Q031").WithDetail(detail)
}
