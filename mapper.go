package main

import (
	"net/url"
	"strconv"
)

// pathFlag pairs an option switch with the path segment Loripsum expects
// for it.
type pathFlag struct {
	enabled func(Options) bool
	segment string
}

// htmlFeatureFlags are emitted in this order after the paragraph settings.
var htmlFeatureFlags = []pathFlag{
	{func(o Options) bool { return o.Headers }, "headers"},
	{func(o Options) bool { return o.InlineStyling }, "decorate"},
	{func(o Options) bool { return o.Link }, "link"},
	{func(o Options) bool { return o.BQ }, "bq"},
	{func(o Options) bool { return o.Code }, "code"},
}

// htmlListFlags are only consulted when lists are enabled.
var htmlListFlags = []pathFlag{
	{func(o Options) bool { return o.UL }, "ul"},
	{func(o Options) bool { return o.OL }, "ol"},
	{func(o Options) bool { return o.DL }, "dl"},
}

// mapPathSegments builds the ordered Loripsum path for plaintext and html.
// It returns nil for any other format.
func mapPathSegments(format Format, opts Options) []string {
	segments := []string{strconv.Itoa(opts.NumParas), opts.ParaLength}

	switch format {
	case FormatPlaintext:
		return append(segments, "prude", "plaintext")
	case FormatHTML:
		for _, f := range htmlFeatureFlags {
			if f.enabled(opts) {
				segments = append(segments, f.segment)
			}
		}
		if opts.Lists {
			for _, f := range htmlListFlags {
				if f.enabled(opts) {
					segments = append(segments, f.segment)
				}
			}
		}
		return append(segments, "prude")
	default:
		return nil
	}
}

// markdownRule sets zero or more Lorem Markdownum parameters.
type markdownRule func(o Options, params url.Values)

const on = "on"

// markdownRules run in order. The service also documents no-external-links
// but it has no effect; links follow inline markup.
var markdownRules = []markdownRule{
	func(o Options, p url.Values) {
		p.Set("num-blocks", strconv.Itoa(o.NumParas))
	},
	func(o Options, p url.Values) {
		if !o.Headers {
			p.Set("no-headers", on)
		} else if o.HeaderStyle == "underlines" {
			p.Set("underline-headers", on)
		}
	},
	func(o Options, p url.Values) {
		if !o.Lists {
			p.Set("no-lists", on)
		}
	},
	func(o Options, p url.Values) {
		if !o.InlineStyling {
			p.Set("no-inline-markup", on)
			return
		}
		if o.InlineEmphasis == "underscores" {
			p.Set("underscore-em", on)
			p.Set("underscore-strong", on)
		}
		if o.MarkdownLinkStyle == "reference" {
			p.Set("reference-links", on)
		}
	},
	func(o Options, p url.Values) {
		if !o.BQ {
			p.Set("no-quotes", on)
		}
	},
	func(o Options, p url.Values) {
		if !o.Code {
			p.Set("no-code", on)
		} else if o.CodeBlockStyle == "backticks" {
			p.Set("fenced-code-blocks", on)
		}
	},
}

// mapQueryParams builds the Lorem Markdownum query for the markdown format.
// Keys are present only when they change the service default.
func mapQueryParams(opts Options) url.Values {
	params := url.Values{}
	for _, rule := range markdownRules {
		rule(opts, params)
	}
	return params
}
