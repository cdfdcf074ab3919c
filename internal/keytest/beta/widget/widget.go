// Package widget shares its name and type names with alpha/widget.
package widget

type Client struct{}

type Source interface {
	Client() Client
}
