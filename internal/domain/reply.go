package domain

import (
	"fmt"

	"github.com/valyala/fasttemplate"
)

// ReplyKind selects the reply template.
type ReplyKind int

const (
	// ReplyAssigned is posted when a code review is assigned.
	ReplyAssigned ReplyKind = iota + 1
	// ReplyEdited is posted when the pull request title or body changes.
	ReplyEdited
	// ReplySubmitted is posted when a reviewer approves or rejects.
	ReplySubmitted
)

// ReplyFields holds the values substituted into a reply template. Each
// template only uses some of them.
type ReplyFields struct {
	Title    string
	Assignee string
	Reviewer string
	URL      string
	Field    string
	Status   string
	Body     string
}

const assignedReplyTemplate = `
### {title}
Code Review assignee: | {assignee}
-: | -
Pull Request: | {url}
Action: | {assignee} was assigned code review

{body}

---
`

const editedReplyTemplate = `
### {title}
Code Review assignee: | {assignee}
-: | -
Pull Request: | {url}
Action: | The *{field}* was updated on the pull request below:

{body}

---
`

const submittedReplyTemplate = `
Code Review {status} by: | {reviewer}
-: | -
Review: | {url}
Action: | {reviewer} flagged the code review as _{status}_

{body}

---
`

// RenderReply renders the reply text for kind.
func RenderReply(kind ReplyKind, fields ReplyFields) (string, error) {
	var template string
	switch kind {
	case ReplyAssigned:
		template = assignedReplyTemplate
	case ReplyEdited:
		template = editedReplyTemplate
	case ReplySubmitted:
		template = submittedReplyTemplate
	default:
		return "", fmt.Errorf("unknown reply kind %d", kind)
	}

	return fasttemplate.ExecuteString(template, "{", "}", map[string]any{
		"title":    fields.Title,
		"assignee": fields.Assignee,
		"reviewer": fields.Reviewer,
		"url":      fields.URL,
		"field":    fields.Field,
		"status":   fields.Status,
		"body":     fields.Body,
	}), nil
}
