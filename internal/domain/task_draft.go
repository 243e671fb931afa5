package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskDraft represents a task to be created from file input.
type TaskDraft struct {
	Title       string
	Description string
	Status      Status // Empty means the server default (pending)
}

// ParseTaskDrafts parses a YAML document containing one or more task definitions.
// The document is either a list of tasks or a mapping with a "tasks" list.
// A task is either a bare title or a mapping with title, description and status.
//
// Format:
//
//	- Buy milk
//	- title: Write report
//	  description: Q3 numbers
//	  status: in_progress
func ParseTaskDrafts(content string) ([]TaskDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrEmptyFile
	}

	list, err := taskListNode(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if len(list.Content) == 0 {
		return nil, ErrNoTasksInFile
	}

	drafts := make([]TaskDraft, 0, len(list.Content))
	for i, item := range list.Content {
		draft, err := parseDraftNode(item)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// taskListNode returns the sequence node holding the task entries.
func taskListNode(root *yaml.Node) (*yaml.Node, error) {
	switch root.Kind {
	case yaml.SequenceNode:
		return root, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "tasks" {
				if root.Content[i+1].Kind != yaml.SequenceNode {
					return nil, fmt.Errorf("line %d: \"tasks\" must be a list", root.Content[i+1].Line)
				}
				return root.Content[i+1], nil
			}
		}
		return nil, ErrNoTasksInFile
	default:
		return nil, fmt.Errorf("line %d: expected a list of tasks", root.Line)
	}
}

func parseDraftNode(node *yaml.Node) (TaskDraft, error) {
	var draft TaskDraft

	switch node.Kind {
	case yaml.ScalarNode:
		draft.Title = node.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return draft, fmt.Errorf("line %d: %q must be a scalar", value.Line, key.Value)
			}
			switch key.Value {
			case "title":
				draft.Title = value.Value
			case "description":
				draft.Description = value.Value
			case "status":
				st, err := ParseStatus(value.Value)
				if err != nil {
					return draft, err
				}
				draft.Status = st
			default:
				return draft, fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
			}
		}
	default:
		return draft, fmt.Errorf("line %d: expected a title or a mapping", node.Line)
	}

	title, err := ValidateTitle(draft.Title)
	if err != nil {
		return draft, err
	}
	draft.Title = title
	return draft, nil
}
