package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
)

// textKey is the field each output item carries the generated text under.
const textKey = "text"

// Item is one JSON object flowing through a batch.
type Item map[string]any

// with returns a copy of it with key set to value.
func (it Item) with(key string, value any) Item {
	out := make(Item, len(it)+1)
	maps.Copy(out, it)
	out[key] = value
	return out
}

// readItems parses either a JSON array of objects or newline-delimited JSON
// objects. Blank input yields no items.
func readItems(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var items []Item
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse items: %w", err)
		}
		return items, nil
	}

	var items []Item
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("parse item on line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	return items, nil
}

// loadItems reads items from path, or stdin when path is "-". An empty
// path means no input items.
func loadItems(path string) ([]Item, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return readItems(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()
	return readItems(f)
}
