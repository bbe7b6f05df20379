package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/orderlens/schema"
	"github.com/spektr-org/orderlens/store"
)

// ============================================================================
// TABLE JOIN — Builds the order table from the raw marketplace tables
// ============================================================================
// orders ⋈ items is an inner join and yields one row per item. Reviews and
// payments are left-joined and fan out: an order with two reviews and three
// payments produces six rows per item. Coordinates are the mean of every
// geolocation row sharing the customer's zip prefix.
//
// Only the orders and items tables are mandatory. A missing optional table
// leaves its columns unavailable and disables the reports that need them.
// ============================================================================

type orderHead struct {
	customerID  string
	purchasedAt string
}

type item struct {
	orderID   string
	productID string
	sellerID  string
}

type payment struct {
	kind  string
	count int
}

type customer struct {
	zip   string
	city  string
	state string
}

type coords struct {
	lat, lng float64
	n        int
}

// tables holds the raw tables keyed for the join.
type tables struct {
	orders       map[string]orderHead
	items        []item
	products     map[string]string // product_id → category (original)
	translations map[string]string // original → english
	reviews      map[string][]float64
	payments     map[string][]payment
	customers    map[string]customer
	geo          map[string]*coords

	columns []string
	skipped map[schema.Layout]int // malformed rows per table
}

// joinStats counts what join had to leave out.
type joinStats struct {
	badTimestamps int // orders whose purchase timestamp does not parse
	orphanItems   int // items whose order is not in the orders table
}

// LoadDir reads the raw marketplace tables from dir under their standard
// file names and joins them into a Store.
func LoadDir(dir string) (*store.Store, error) {
	t, err := readTables(dir)
	if err != nil {
		return nil, err
	}
	orders, stats := t.join()
	log.Infof("📊 Joined %d rows from %s", len(orders), dir)
	if stats.badTimestamps > 0 {
		log.Warningf("%s: skipped %d orders with unreadable timestamps", dir, stats.badTimestamps)
	}
	if stats.orphanItems > 0 {
		log.Warningf("%s: skipped %d items without a matching order", dir, stats.orphanItems)
	}
	return store.New(orders, t.columns), nil
}

func readTables(dir string) (*tables, error) {
	t := &tables{
		orders:       make(map[string]orderHead),
		products:     make(map[string]string),
		translations: make(map[string]string),
		reviews:      make(map[string][]float64),
		payments:     make(map[string][]payment),
		customers:    make(map[string]customer),
		geo:          make(map[string]*coords),
		skipped:      make(map[schema.Layout]int),
	}

	steps := []struct {
		layout   schema.Layout
		required bool
		columns  []string
		read     func(get func(string) string)
	}{
		{schema.LayoutOrders, true, []string{schema.KeyOrderID, schema.KeyCustomerID, schema.KeyPurchasedAt},
			func(get func(string) string) {
				t.orders[get("order_id")] = orderHead{
					customerID:  get("customer_id"),
					purchasedAt: get("order_purchase_timestamp"),
				}
			}},
		{schema.LayoutItems, true, []string{schema.KeySellerID},
			func(get func(string) string) {
				t.items = append(t.items, item{
					orderID:   get("order_id"),
					productID: get("product_id"),
					sellerID:  get("seller_id"),
				})
			}},
		{schema.LayoutProducts, false, []string{schema.KeyCategoryPT, schema.KeyCategory},
			func(get func(string) string) {
				t.products[get("product_id")] = get("product_category_name")
			}},
		{schema.LayoutTranslation, false, nil,
			func(get func(string) string) {
				t.translations[get("product_category_name")] = get("product_category_name_english")
			}},
		{schema.LayoutReviews, false, []string{schema.KeyReviewScore},
			func(get func(string) string) {
				id := get("order_id")
				t.reviews[id] = append(t.reviews[id], store.NormalizeScore(parseFloat(get("review_score"))))
			}},
		{schema.LayoutPayments, false, []string{schema.KeyPaymentType, schema.KeyPaymentCount},
			func(get func(string) string) {
				id := get("order_id")
				t.payments[id] = append(t.payments[id], payment{
					kind:  get("payment_type"),
					count: parseInt(get("payment_sequential")),
				})
			}},
		{schema.LayoutCustomers, false, []string{schema.KeyCity, schema.KeyState},
			func(get func(string) string) {
				t.customers[get("customer_id")] = customer{
					zip:   get("customer_zip_code_prefix"),
					city:  get("customer_city"),
					state: get("customer_state"),
				}
			}},
		{schema.LayoutGeolocation, false, []string{schema.KeyLatitude, schema.KeyLongitude},
			func(get func(string) string) {
				lat, lng := parseFloat(get("geolocation_lat")), parseFloat(get("geolocation_lng"))
				if math.IsNaN(lat) || math.IsNaN(lng) {
					return
				}
				zip := get("geolocation_zip_code_prefix")
				c, ok := t.geo[zip]
				if !ok {
					c = &coords{}
					t.geo[zip] = c
				}
				c.lat += lat
				c.lng += lng
				c.n++
			}},
	}

	for _, s := range steps {
		path := filepath.Join(dir, schema.TableFiles[s.layout])
		n, err := readTable(path, s.layout, s.read)
		if errors.Is(err, fs.ErrNotExist) && !s.required {
			log.Warningf("%s not found, %s columns unavailable", filepath.Base(path), s.layout)
			continue
		}
		if err != nil {
			return nil, err
		}
		if n > 0 {
			t.skipped[s.layout] = n
			log.Warningf("%s: skipped %d malformed rows", filepath.Base(path), n)
		}
		t.columns = append(t.columns, s.columns...)
	}

	return t, nil
}

// readTable streams the rows of one raw table into fn and returns the number
// of rows dropped as malformed. get returns the trimmed cell for a
// snake_cased header name.
func readTable(path string, layout schema.Layout, fn func(get func(string) string)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to read CSV headers: %w", path, err)
	}
	idx, err := schema.Require(layout, headers)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	var row []string
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	skipped := 0
	for {
		row, err = reader.Read()
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			skipped++
			continue
		}
		fn(get)
	}
}

// join expands the raw tables into order rows. Items whose order is unknown
// are dropped and counted; orders with unreadable timestamps are counted
// once each.
func (t *tables) join() ([]store.Order, joinStats) {
	var out []store.Order
	var stats joinStats
	bad := make(map[string]bool)

	for _, it := range t.items {
		head, ok := t.orders[it.orderID]
		if !ok {
			stats.orphanItems++
			continue
		}
		ts, err := schema.ParseTime(head.purchasedAt)
		if err != nil {
			bad[it.orderID] = true
			continue
		}

		original := t.products[it.productID]
		base := store.Order{
			OrderID:     it.orderID,
			CustomerID:  head.customerID,
			PurchasedAt: ts,
			Category:    store.NormalizeCategory(t.translations[original], original),
			SellerID:    it.sellerID,
			Latitude:    math.NaN(),
			Longitude:   math.NaN(),
		}
		if c, ok := t.customers[head.customerID]; ok {
			base.City, base.State = c.city, c.state
			if g, ok := t.geo[c.zip]; ok && g.n > 0 {
				base.Latitude = g.lat / float64(g.n)
				base.Longitude = g.lng / float64(g.n)
			}
		}

		scores := t.reviews[it.orderID]
		if len(scores) == 0 {
			scores = []float64{math.NaN()}
		}
		pays := t.payments[it.orderID]
		if len(pays) == 0 {
			pays = []payment{{}}
		}

		for _, score := range scores {
			for _, p := range pays {
				o := base
				o.ReviewScore = score
				o.PaymentType = p.kind
				o.PaymentCount = p.count
				out = append(out, o)
			}
		}
	}

	stats.badTimestamps = len(bad)
	return out, stats
}
