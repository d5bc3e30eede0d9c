package leadsheet

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scope requested when authorizing sheet access.
const Scope = sheets.SpreadsheetsScope

// Client reads and writes one tab of a Google spreadsheet.
type Client struct {
	spreadsheetID string
	sheetName     string
	tokens        oauth2.TokenSource
	opts          []option.ClientOption

	mu  sync.Mutex
	svc *sheets.Service
}

func NewClient(spreadsheetID, sheetName string, tokens oauth2.TokenSource, opts ...option.ClientOption) *Client {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &Client{spreadsheetID: spreadsheetID, sheetName: sheetName, tokens: tokens, opts: opts}
}

func (c *Client) service(ctx context.Context) (*sheets.Service, error) {
	if _, err := c.tokens.Token(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.svc != nil {
		return c.svc, nil
	}
	opts := append([]option.ClientOption{option.WithTokenSource(c.tokens)}, c.opts...)
	svc, err := sheets.NewService(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	c.svc = svc
	return svc, nil
}

// Read loads the whole tab.
func (c *Client) Read(ctx context.Context) (*Table, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	return NewTable(resp.Values), nil
}

// UpdateRow writes the given column values into one row with a single RAW
// batch update. Columns missing from the header are skipped. It returns the
// columns actually written.
func (c *Client) UpdateRow(ctx context.Context, t *Table, row int, values map[string]string) ([]string, error) {
	data := c.rowUpdates(t, row, values)
	if len(data) == 0 {
		return nil, nil
	}
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: data}
	if _, err := svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("update row %d: %w", row, err)
	}
	written := make([]string, 0, len(data))
	for name := range values {
		if t.Column(name) >= 0 {
			written = append(written, name)
		}
	}
	sort.Strings(written)
	return written, nil
}

func (c *Client) rowUpdates(t *Table, row int, values map[string]string) []*sheets.ValueRange {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var data []*sheets.ValueRange
	for _, name := range names {
		idx := t.Column(name)
		if idx < 0 {
			continue
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", c.sheetName, ColumnLetter(idx), row),
			Values: [][]interface{}{{values[name]}},
		})
	}
	return data
}
