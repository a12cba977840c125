package dto

import (
	"strings"

	"colisflow/internal/domain/audit"
)

// AuditListQuery filters GET /audit. Both dates are inclusive days.
type AuditListQuery struct {
	PageQuery
	UserID   string `form:"userId"`
	Entity   string `form:"entity"`
	EntityID string `form:"entityId"`
	Action   string `form:"action"`
	Outcome  string `form:"outcome"`
	From     string `form:"from"`
	To       string `form:"to"`
}

// ToFilter converts to the domain filter.
func (q *AuditListQuery) ToFilter() (audit.Filter, error) {
	f := audit.Filter{
		UserID:   q.UserID,
		Entity:   q.Entity,
		EntityID: q.EntityID,
		Action:   audit.Action(strings.ToUpper(q.Action)),
		Outcome:  audit.Outcome(strings.ToLower(q.Outcome)),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if f.Limit == 0 {
		f.Limit = 100
	}

	from, err := ParseDate("from", q.From)
	if err != nil {
		return f, err
	}
	if !from.IsZero() {
		f.From = &from
	}
	to, err := ParseDate("to", q.To)
	if err != nil {
		return f, err
	}
	if !to.IsZero() {
		f.To = dayAfter(to)
	}
	return f, nil
}
