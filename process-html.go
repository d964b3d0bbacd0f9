package cssembed

import (
	"context"
	"fmt"
	"io"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// EmbedHTML embeds the URLs found in the <style> elements of an HTML
// document. Each element is processed as its own stylesheet, in document
// order.
func (e *Embedder) EmbedHTML(ctx context.Context, input io.Reader, baseDir string) (*Result, error) {
	if !e.isValidated {
		return nil, ErrNotValidated
	}

	if baseDir == "" {
		baseDir = e.BaseDir
	}

	return e.processHTML(ctx, input, baseDir, "")
}

func (e *Embedder) processHTML(ctx context.Context, input io.Reader, baseDir string, name string) (*Result, error) {
	// Parse input into HTML document
	doc, err := html.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &Result{}
	for _, node := range dom.GetElementsByTagName(doc, "style") {
		styleResult, err := e.processStyleNode(ctx, node, baseDir, name)
		if err != nil {
			return nil, err
		}

		result.URLs = append(result.URLs, styleResult.URLs...)
	}

	// Convert document back to string
	result.Content = dom.OuterHTML(doc)
	return result, nil
}

func (e *Embedder) processStyleNode(ctx context.Context, node *html.Node, baseDir string, name string) (*Result, error) {
	style := dom.TextContent(node)
	result, err := e.processCSS(ctx, style, baseDir, name)
	if err != nil {
		return nil, err
	}

	if !result.NoOp() {
		dom.SetTextContent(node, result.Content)
	}

	return result, nil
}
