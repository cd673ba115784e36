package scripting

import (
	"context"

	"github.com/wudi/pptxkit/builder"
	"github.com/wudi/pptxkit/layout"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute executes a script against the registered deck.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterDeck exposes the deck under construction as the pptx global.
	RegisterDeck(deck *Deck) error
}

// Deck is what a script builds on.
type Deck struct {
	Builder builder.PresentationBuilder
	// Layout paginates tables for addSlidesForTable; created from Builder
	// when nil.
	Layout *layout.Engine
	// Tables resolves the table id given to addSlidesForTable. Scripts can
	// only pass row arrays when it is nil.
	Tables func(id string) (layout.SourceTable, error)
}
