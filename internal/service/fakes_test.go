package service

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"purchase-control/internal/models"
	"purchase-control/internal/repository"
	"purchase-control/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memDB backs every fake repository. memTx snapshots it so a failing
// transaction leaves it untouched.
type memDB struct {
	mu         sync.Mutex
	purchases  []*models.Purchase
	items      []*models.PurchaseItem
	products   []*models.Product
	categories []*models.Category
	receipts   map[uuid.UUID]*models.Receipt

	failItemAt int
	itemWrites int
}

func newMemDB() *memDB {
	return &memDB{receipts: make(map[uuid.UUID]*models.Receipt)}
}

type memSnapshot struct {
	purchases []*models.Purchase
	items     []*models.PurchaseItem
	products  []*models.Product
	links     map[uuid.UUID]*uuid.UUID
}

func (db *memDB) snapshot() memSnapshot {
	links := make(map[uuid.UUID]*uuid.UUID, len(db.receipts))
	for id, r := range db.receipts {
		links[id] = r.PurchaseID
	}
	return memSnapshot{
		purchases: slices.Clone(db.purchases),
		items:     slices.Clone(db.items),
		products:  slices.Clone(db.products),
		links:     links,
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.purchases = s.purchases
	db.items = s.items
	db.products = s.products
	for id, link := range s.links {
		db.receipts[id].PurchaseID = link
	}
}

func (db *memDB) category(id *uuid.UUID) *models.Category {
	if id == nil {
		return nil
	}
	for _, c := range db.categories {
		if c.ID == *id {
			return c
		}
	}
	return nil
}

func (db *memDB) purchase(id uuid.UUID) *models.Purchase {
	for _, p := range db.purchases {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (db *memDB) withRelations(item *models.PurchaseItem) *models.PurchaseItem {
	out := *item
	out.Purchase = db.purchase(item.PurchaseID)
	out.Category = db.category(item.CategoryID)
	return &out
}

type memTx struct {
	db *memDB
}

func (t memTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	t.db.mu.Lock()
	snap := t.db.snapshot()
	t.db.mu.Unlock()

	if err := fn(nil); err != nil {
		t.db.mu.Lock()
		t.db.restore(snap)
		t.db.mu.Unlock()
		return err
	}
	return nil
}

type memReceipts struct {
	db *memDB
}

func (r memReceipts) Create(ctx context.Context, receipt *models.Receipt) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	copied := *receipt
	r.db.receipts[receipt.ID] = &copied
	return nil
}

func (r memReceipts) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	receipt, ok := r.db.receipts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *receipt
	return &copied, nil
}

func (r memReceipts) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	receipt, ok := r.db.receipts[id]
	if !ok || receipt.OCRStatus.IsTerminal() {
		return repository.ErrInvalidTransition
	}
	receipt.OCRStatus = models.OCRStatusProcessing
	return nil
}

func (r memReceipts) MarkCompleted(ctx context.Context, id uuid.UUID, result json.RawMessage) error {
	return r.finish(id, models.OCRStatusCompleted, result)
}

func (r memReceipts) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	result, _ := json.Marshal(map[string]string{"error": message})
	return r.finish(id, models.OCRStatusError, result)
}

func (r memReceipts) finish(id uuid.UUID, status models.OCRStatus, result json.RawMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	receipt, ok := r.db.receipts[id]
	if !ok || receipt.OCRStatus != models.OCRStatusProcessing {
		return repository.ErrInvalidTransition
	}
	receipt.OCRStatus = status
	receipt.OCRResult = result
	return nil
}

func (r memReceipts) LinkPurchase(ctx context.Context, q postgres.Querier, receiptID, purchaseID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	receipt, ok := r.db.receipts[receiptID]
	if !ok {
		return repository.ErrNotFound
	}
	receipt.PurchaseID = &purchaseID
	return nil
}

type memPurchases struct {
	db *memDB
}

func (r memPurchases) Create(ctx context.Context, q postgres.Querier, p *models.Purchase) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	copied := *p
	r.db.purchases = append(r.db.purchases, &copied)
	return nil
}

func (r memPurchases) CreateItem(ctx context.Context, q postgres.Querier, item *models.PurchaseItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.itemWrites++
	if r.db.failItemAt > 0 && r.db.itemWrites == r.db.failItemAt {
		return errors.New("insert purchase item: connection reset")
	}
	copied := *item
	r.db.items = append(r.db.items, &copied)
	return nil
}

func (r memPurchases) List(ctx context.Context) ([]*models.Purchase, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Purchase, 0, len(r.db.purchases))
	for _, p := range r.db.purchases {
		copied := *p
		for _, item := range r.db.items {
			if item.PurchaseID == p.ID {
				copied.ItemCount++
			}
		}
		out = append(out, &copied)
	}
	slices.SortStableFunc(out, func(a, b *models.Purchase) int {
		return b.PurchaseDate.Compare(a.PurchaseDate)
	})
	return out, nil
}

func (r memPurchases) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p := r.db.purchase(id)
	if p == nil {
		return nil, repository.ErrNotFound
	}
	copied := *p
	for _, item := range r.db.items {
		if item.PurchaseID == id {
			copied.Items = append(copied.Items, item)
		}
	}
	copied.ItemCount = len(copied.Items)
	return &copied, nil
}

func (r memPurchases) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.purchase(id) == nil {
		return repository.ErrNotFound
	}
	r.db.purchases = slices.DeleteFunc(r.db.purchases, func(p *models.Purchase) bool { return p.ID == id })
	r.db.items = slices.DeleteFunc(r.db.items, func(i *models.PurchaseItem) bool { return i.PurchaseID == id })
	return nil
}

type memProducts struct {
	db *memDB
}

func (r memProducts) Resolve(ctx context.Context, q postgres.Querier, p *models.Product) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.products {
		if existing.NormalizedName == p.NormalizedName {
			return existing, nil
		}
	}
	copied := *p
	r.db.products = append(r.db.products, &copied)
	return &copied, nil
}

func (r memProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memProducts) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.Product
	for _, p := range r.db.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) AssignCategory(ctx context.Context, id uuid.UUID, categoryID *uuid.UUID) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.products {
		if p.ID == id {
			p.CategoryID = categoryID
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memCategories struct {
	db *memDB
}

func (r memCategories) Create(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	copied := *c
	r.db.categories = append(r.db.categories, &copied)
	return nil
}

func (r memCategories) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c := r.db.category(&id); c != nil {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (r memCategories) GetByName(ctx context.Context, name string) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memCategories) List(ctx context.Context) ([]*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return slices.Clone(r.db.categories), nil
}

func (r memCategories) Update(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing := r.db.category(&c.ID)
	if existing == nil {
		return repository.ErrNotFound
	}
	existing.Name, existing.Color = c.Name, c.Color
	return nil
}

func (r memCategories) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.category(&id) == nil {
		return repository.ErrNotFound
	}
	r.db.categories = slices.DeleteFunc(r.db.categories, func(c *models.Category) bool { return c.ID == id })
	return nil
}

type memReports struct {
	db *memDB
}

func (r memReports) FindPurchases(ctx context.Context, f repository.PurchaseFilter) ([]*models.Purchase, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Purchase, 0)
	for _, p := range r.db.purchases {
		if f.From != nil && p.PurchaseDate.Before(*f.From) {
			continue
		}
		if f.To != nil && p.PurchaseDate.After(*f.To) {
			continue
		}
		if f.Supplier != "" && !containsFold(p.SupplierName, f.Supplier) {
			continue
		}
		copied := *p
		copied.Items = nil
		for _, item := range r.db.items {
			if item.PurchaseID != p.ID {
				continue
			}
			full := r.db.withRelations(item)
			if f.ProductName != "" && !containsFold(full.ProductName, f.ProductName) {
				continue
			}
			if f.CategoryName != "" && (full.Category == nil || !containsFold(full.Category.Name, f.CategoryName)) {
				continue
			}
			copied.Items = append(copied.Items, full)
		}
		copied.ItemCount = len(copied.Items)
		out = append(out, &copied)
	}
	slices.SortStableFunc(out, func(a, b *models.Purchase) int {
		return b.PurchaseDate.Compare(a.PurchaseDate)
	})
	return out, nil
}

func (r memReports) FindItemsByProductName(ctx context.Context, name string, limit int) ([]*models.PurchaseItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.PurchaseItem
	for _, item := range r.db.items {
		if containsFold(item.ProductName, name) {
			out = append(out, r.db.withRelations(item))
		}
	}
	slices.SortStableFunc(out, func(a, b *models.PurchaseItem) int {
		return b.Purchase.PurchaseDate.Compare(a.Purchase.PurchaseDate)
	})
	return out[:min(len(out), limit)], nil
}

func (r memReports) FindItemsByProducts(ctx context.Context, ids []uuid.UUID, from, to time.Time) ([]*models.PurchaseItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.PurchaseItem
	for _, item := range r.db.items {
		if !slices.Contains(ids, item.ProductID) {
			continue
		}
		full := r.db.withRelations(item)
		if full.Purchase.PurchaseDate.Before(from) || full.Purchase.PurchaseDate.After(to) {
			continue
		}
		out = append(out, full)
	}
	return out, nil
}

func (r memReports) SearchProductNames(ctx context.Context, q string, limit int) ([]repository.ProductNameUsage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []repository.ProductNameUsage
	index := make(map[string]int)
	for _, item := range r.db.items {
		if q != "" && !containsFold(item.ProductName, q) {
			continue
		}
		i, ok := index[item.ProductName]
		if !ok {
			i = len(out)
			index[item.ProductName] = i
			out = append(out, repository.ProductNameUsage{Name: item.ProductName, TotalQuantity: decimal.Zero})
		}
		out[i].Count++
		out[i].TotalQuantity = out[i].TotalQuantity.Add(item.Quantity)
	}
	slices.SortStableFunc(out, func(a, b repository.ProductNameUsage) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out[:min(len(out), limit)], nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// fakeFiles is an in-memory FileStore. SignedReadURL returns baseURL+key so
// a test server can serve the content.
type fakeFiles struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeFiles(baseURL string) *fakeFiles {
	return &fakeFiles{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (f *fakeFiles) Put(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	key := "receipts/" + fileName
	f.objects[key] = data
	return key, nil
}

func (f *fakeFiles) SignedReadURL(ctx context.Context, key string) (string, error) {
	return f.baseURL + "/" + key, nil
}

func (f *fakeFiles) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// scriptedCompleter answers CompleteJSON calls in order.
type scriptedCompleter struct {
	mu       sync.Mutex
	answers  []string
	errs     []error
	requests []CompletionRequest
	// onCall runs before the scripted answer is returned.
	onCall func(i int)
}

func (c *scriptedCompleter) CompleteJSON(ctx context.Context, req CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := len(c.requests)
	c.requests = append(c.requests, req)
	if c.onCall != nil {
		c.onCall(i)
	}
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.answers) {
		return c.answers[i], nil
	}
	return "", errors.New("unexpected completion call")
}
