package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/op/go-logging"

	"github.com/spektr-org/orderlens/schema"
	"github.com/spektr-org/orderlens/store"
)

// ============================================================================
// CSV HELPER — Parses joined order extracts into []store.Order
// ============================================================================
// Consumers read files from wherever they live; ParseOrders only needs a
// reader. Headers are mapped onto canonical keys through the schema, so
// extracts with renamed or reordered columns still load.
// ============================================================================

var log = logging.MustGetLogger("helpers")

// ErrNoInput is returned when no input file was given.
var ErrNoInput = errors.New("no input files")

// ParseResult is the outcome of parsing one extract.
type ParseResult struct {
	Orders  []store.Order
	Columns []string // canonical keys present in the header
	Skipped int      // rows dropped as malformed
}

// ParseOrders parses a joined order extract. A missing required column is
// fatal; malformed rows are skipped and counted.
func ParseOrders(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	mapping, err := schema.Resolve(headers)
	if err != nil {
		if layout := schema.Detect(headers); layout != schema.LayoutJoined && layout != schema.LayoutUnknown {
			return nil, fmt.Errorf("%w (header matches the raw %s table; load the raw tables as a directory)", err, layout)
		}
		return nil, err
	}

	result := &ParseResult{Columns: mapping.Keys()}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			continue
		}

		o, err := orderFromRow(mapping, row)
		if err != nil {
			result.Skipped++
			continue
		}
		result.Orders = append(result.Orders, o)
	}

	return result, nil
}

func orderFromRow(m schema.Mapping, row []string) (store.Order, error) {
	id := m.Get(row, schema.KeyOrderID)
	if id == "" {
		return store.Order{}, errors.New("empty order id")
	}
	ts, err := schema.ParseTime(m.Get(row, schema.KeyPurchasedAt))
	if err != nil {
		return store.Order{}, err
	}

	return store.Order{
		OrderID:      id,
		CustomerID:   m.Get(row, schema.KeyCustomerID),
		PurchasedAt:  ts,
		Category:     store.NormalizeCategory(m.Get(row, schema.KeyCategory), m.Get(row, schema.KeyCategoryPT)),
		SellerID:     m.Get(row, schema.KeySellerID),
		ReviewScore:  store.NormalizeScore(parseFloat(m.Get(row, schema.KeyReviewScore))),
		PaymentType:  m.Get(row, schema.KeyPaymentType),
		PaymentCount: parseInt(m.Get(row, schema.KeyPaymentCount)),
		City:         m.Get(row, schema.KeyCity),
		State:        m.Get(row, schema.KeyState),
		Latitude:     parseFloat(m.Get(row, schema.KeyLatitude)),
		Longitude:    parseFloat(m.Get(row, schema.KeyLongitude)),
	}, nil
}

// LoadFiles parses one or more joined extracts and concatenates them into a
// Store. A column counts as available only if every file carries it.
func LoadFiles(paths ...string) (*store.Store, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}

	var orders []store.Order
	var columns []string
	for i, path := range paths {
		res, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		log.Infof("📊 Parsed %d records from %s", len(res.Orders), path)
		if res.Skipped > 0 {
			log.Warningf("%s: skipped %d malformed rows", path, res.Skipped)
		}

		orders = append(orders, res.Orders...)
		if i == 0 {
			columns = res.Columns
		} else {
			columns = intersect(columns, res.Columns)
		}
	}

	return store.New(orders, columns), nil
}

func parseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	res, err := ParseOrders(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, k := range b {
		in[k] = true
	}
	out := a[:0:0]
	for _, k := range a {
		if in[k] {
			out = append(out, k)
		}
	}
	return out
}

// parseFloat returns NaN for blank or unparsable cells.
func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
