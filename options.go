package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Format selects the output style and, with it, the remote service.
type Format string

const (
	FormatPlaintext Format = "plaintext"
	FormatHTML      Format = "html"
	FormatMarkdown  Format = "markdown"
)

var allFormats = []Format{FormatPlaintext, FormatHTML, FormatMarkdown}

// ErrUnknownFormat is returned for any format outside allFormats.
var ErrUnknownFormat = errors.New("unknown format")

// PreconditionViolation reports a format or option value the caller should
// never have supplied.
type PreconditionViolation struct {
	Option string
	Value  string
	Reason string
	err    error
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Option, e.Value, e.Reason)
}

func (e *PreconditionViolation) Unwrap() error { return e.err }

// parseFormat converts a user-supplied string to a Format.
func parseFormat(s string) (Format, error) {
	f := Format(s)
	if !slices.Contains(allFormats, f) {
		return "", &PreconditionViolation{
			Option: "format",
			Value:  s,
			Reason: "must be one of plaintext, html, markdown",
			err:    ErrUnknownFormat,
		}
	}
	return f, nil
}

// Options is the full set of generation options. Every key is always
// present; which ones matter depends on the format.
type Options struct {
	NumParas          int    `yaml:"numParas"`
	ParaLength        string `yaml:"paraLength"`
	Headers           bool   `yaml:"headers"`
	HeaderStyle       string `yaml:"headerStyle"`
	Lists             bool   `yaml:"lists"`
	UL                bool   `yaml:"ul"`
	OL                bool   `yaml:"ol"`
	DL                bool   `yaml:"dl"`
	InlineStyling     bool   `yaml:"inlineStyling"`
	InlineEmphasis    string `yaml:"inlineEmphasis"`
	MarkdownLinkStyle string `yaml:"markdownLinkStyle"`
	Link              bool   `yaml:"link"`
	BQ                bool   `yaml:"bq"`
	Code              bool   `yaml:"code"`
	CodeBlockStyle    string `yaml:"codeBlockStyle"`
}

type optionKind int

const (
	kindBool optionKind = iota
	kindEnum
	kindInt
)

func (k optionKind) String() string {
	switch k {
	case kindBool:
		return "boolean"
	case kindEnum:
		return "enum"
	case kindInt:
		return "integer"
	default:
		return "unknown"
	}
}

// optionSpec describes one option: its domain, its default and when it is
// meaningful. requires names a boolean option that must be on for this one
// to apply.
type optionSpec struct {
	Name        string
	Kind        optionKind
	Values      []string
	Min, Max    int
	Default     string
	Formats     []Format
	Requires    string
	Description string
}

var (
	htmlAndMarkdown = []Format{FormatHTML, FormatMarkdown}
	onlyHTML        = []Format{FormatHTML}
	onlyMarkdown    = []Format{FormatMarkdown}
)

// optionTable is ordered the way options are presented to users.
var optionTable = []optionSpec{
	{Name: "numParas", Kind: kindInt, Min: 1, Max: 15, Default: "5", Formats: allFormats,
		Description: "The number of paragraphs of text to return"},
	{Name: "paraLength", Kind: kindEnum, Values: []string{"short", "medium", "long", "verylong"}, Default: "medium",
		Formats: []Format{FormatPlaintext, FormatHTML}, Description: "How long the paragraphs should be"},
	{Name: "headers", Kind: kindBool, Default: "false", Formats: htmlAndMarkdown,
		Description: "Whether to include headers"},
	{Name: "headerStyle", Kind: kindEnum, Values: []string{"hashes", "underlines"}, Default: "hashes",
		Formats: onlyMarkdown, Requires: "headers", Description: "Whether headers are denoted by ### or underlines"},
	{Name: "lists", Kind: kindBool, Default: "false", Formats: htmlAndMarkdown,
		Description: "Whether to include lists"},
	{Name: "ul", Kind: kindBool, Default: "false", Formats: onlyHTML, Requires: "lists",
		Description: "Whether to include unordered lists"},
	{Name: "ol", Kind: kindBool, Default: "false", Formats: onlyHTML, Requires: "lists",
		Description: "Whether to include ordered lists"},
	{Name: "dl", Kind: kindBool, Default: "false", Formats: onlyHTML, Requires: "lists",
		Description: "Whether to include description lists"},
	{Name: "inlineStyling", Kind: kindBool, Default: "false", Formats: htmlAndMarkdown,
		Description: "Whether to include bold, italics, links, etc."},
	{Name: "inlineEmphasis", Kind: kindEnum, Values: []string{"asterisks", "underscores"}, Default: "asterisks",
		Formats: onlyMarkdown, Requires: "inlineStyling", Description: "Whether bold/italic text uses asterisks or underscores"},
	{Name: "markdownLinkStyle", Kind: kindEnum, Values: []string{"inline", "reference"}, Default: "inline",
		Formats: onlyMarkdown, Requires: "inlineStyling", Description: "Whether link URLs are inline or collected at the end"},
	{Name: "link", Kind: kindBool, Default: "false", Formats: onlyHTML,
		Description: "Whether to include inline links to external websites"},
	{Name: "bq", Kind: kindBool, Default: "false", Formats: htmlAndMarkdown,
		Description: "Whether to include blockquotes"},
	{Name: "code", Kind: kindBool, Default: "false", Formats: htmlAndMarkdown,
		Description: "Whether to include code blocks"},
	{Name: "codeBlockStyle", Kind: kindEnum, Values: []string{"indents", "backticks"}, Default: "indents",
		Formats: onlyMarkdown, Requires: "code", Description: "Whether code blocks use indents or backticks"},
}

// defaultOptions returns the options a fresh invocation starts from.
func defaultOptions() Options {
	return Options{
		NumParas:          5,
		ParaLength:        "medium",
		HeaderStyle:       "hashes",
		InlineEmphasis:    "asterisks",
		MarkdownLinkStyle: "inline",
		CodeBlockStyle:    "indents",
	}
}

// value returns the named option rendered as a string.
func (o Options) value(name string) string {
	switch name {
	case "numParas":
		return strconv.Itoa(o.NumParas)
	case "paraLength":
		return o.ParaLength
	case "headers":
		return strconv.FormatBool(o.Headers)
	case "headerStyle":
		return o.HeaderStyle
	case "lists":
		return strconv.FormatBool(o.Lists)
	case "ul":
		return strconv.FormatBool(o.UL)
	case "ol":
		return strconv.FormatBool(o.OL)
	case "dl":
		return strconv.FormatBool(o.DL)
	case "inlineStyling":
		return strconv.FormatBool(o.InlineStyling)
	case "inlineEmphasis":
		return o.InlineEmphasis
	case "markdownLinkStyle":
		return o.MarkdownLinkStyle
	case "link":
		return strconv.FormatBool(o.Link)
	case "bq":
		return strconv.FormatBool(o.BQ)
	case "code":
		return strconv.FormatBool(o.Code)
	case "codeBlockStyle":
		return o.CodeBlockStyle
	default:
		return ""
	}
}

// validate checks every option against its declared domain, regardless of
// format.
func (o Options) validate() error {
	for _, spec := range optionTable {
		v := o.value(spec.Name)
		switch spec.Kind {
		case kindInt:
			n, err := strconv.Atoi(v)
			if err != nil || n < spec.Min || n > spec.Max {
				return &PreconditionViolation{
					Option: spec.Name,
					Value:  v,
					Reason: fmt.Sprintf("must be between %d and %d", spec.Min, spec.Max),
				}
			}
		case kindEnum:
			if !slices.Contains(spec.Values, v) {
				return &PreconditionViolation{
					Option: spec.Name,
					Value:  v,
					Reason: fmt.Sprintf("must be one of %v", spec.Values),
				}
			}
		}
	}
	return nil
}

// visibleOptions returns the options that have an effect for format given
// the current values of their parent flags.
func visibleOptions(format Format, opts Options) []optionSpec {
	var visible []optionSpec
	for _, spec := range optionTable {
		if !slices.Contains(spec.Formats, format) {
			continue
		}
		if spec.Requires != "" && opts.value(spec.Requires) != "true" {
			continue
		}
		visible = append(visible, spec)
	}
	return visible
}
