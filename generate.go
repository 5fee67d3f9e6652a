package main

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Generator turns a format and options into text from the matching service.
type Generator struct {
	client *Client
	log    zerolog.Logger
}

func newGenerator(client *Client, log zerolog.Logger) *Generator {
	return &Generator{client: client, log: log}
}

// getText maps opts for format, calls the matching service and returns its
// body unmodified. Errors from the client are returned unchanged.
func (g *Generator) getText(ctx context.Context, format Format, opts Options) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatPlaintext, FormatHTML:
		path := "/" + strings.Join(mapPathSegments(format, opts), "/")
		text, err = g.client.request(ctx, g.client.loripsum, "GET", path, nil)
	case FormatMarkdown:
		text, err = g.client.request(ctx, g.client.markdownum, "GET", "", mapQueryParams(opts))
	default:
		_, err = parseFormat(string(format))
		return "", err
	}
	if err != nil {
		return "", err
	}

	if e := g.log.Debug(); e.Enabled() {
		stats := measureText(format, text)
		e.Str("format", string(format)).
			Int("blocks", stats.Blocks).
			Int("words", stats.Words).
			Msg("Generated text")
	}
	return text, nil
}

// runBatch generates one text per item, in order, writing it under
// textKey. All items share format and opts. An empty batch still makes one
// request and yields a single item. The first failure aborts the batch and
// nothing is returned.
func (g *Generator) runBatch(ctx context.Context, items []Item, format Format, opts Options) ([]Item, error) {
	if len(items) == 0 {
		text, err := g.getText(ctx, format, opts)
		if err != nil {
			return nil, err
		}
		return []Item{{textKey: text}}, nil
	}

	out := make([]Item, len(items))
	for i, item := range items {
		text, err := g.getText(ctx, format, opts)
		if err != nil {
			g.log.Error().Err(err).Int("item", i).Int("items", len(items)).Msg("Generation aborted")
			return nil, err
		}
		out[i] = item.with(textKey, text)
	}
	return out, nil
}
