// Package widget declares types whose short names clash with those of
// beta/widget, for exercising type-derived registry keys.
package widget

type Client struct{}

type Source interface {
	Client() Client
}
