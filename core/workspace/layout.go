package workspace

import (
	"context"
	"fmt"
)

// SchemaProperty declares one property of a collection.
type SchemaProperty struct {
	Type PropertyType
	// Options seeds select and status properties.
	Options []string
	// RelationTo is the target collection id of a relation property.
	RelationTo string
	// Format is the number format (e.g. "percent").
	Format string
}

// CollectionSpec describes a collection to create.
type CollectionSpec struct {
	Title      string
	Icon       string
	Properties map[string]SchemaProperty
}

// Layout is what Discover finds under a root record.
type Layout struct {
	// Collections maps collection titles to ids.
	Collections map[string]string
	// Embeds are the embed blocks found in the tree, in walk order.
	Embeds []Block
}

// Discover walks the content tree below rootID depth-first and collects child
// collections and embed blocks.
func Discover(ctx context.Context, c Client, rootID string) (*Layout, error) {
	layout := &Layout{Collections: map[string]string{}}
	if err := discover(ctx, c, rootID, layout); err != nil {
		return nil, err
	}
	return layout, nil
}

func discover(ctx context.Context, c Client, id string, layout *Layout) error {
	children, err := c.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list children of %s: %w", id, err)
	}
	for _, child := range children {
		switch child.Type {
		case BlockChildDatabase:
			layout.Collections[child.Title] = child.ID
		case BlockEmbed:
			layout.Embeds = append(layout.Embeds, child)
		}
		if child.HasChildren {
			if err := discover(ctx, c, child.ID, layout); err != nil {
				return err
			}
		}
	}
	return nil
}

// Ensure returns the id of the collection titled spec.Title, creating it under
// rootID when the layout does not have it.
func (l *Layout) Ensure(ctx context.Context, c Client, rootID string, spec CollectionSpec) (string, error) {
	if id, ok := l.Collections[spec.Title]; ok {
		return id, nil
	}
	id, err := c.CreateCollection(ctx, rootID, spec)
	if err != nil {
		return "", fmt.Errorf("failed to create collection %s: %w", spec.Title, err)
	}
	l.Collections[spec.Title] = id
	return id, nil
}
