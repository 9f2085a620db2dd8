package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// assertErr stands in for an infrastructure failure.
var assertErr = errors.New("storage unavailable")

// --- Mock ProductRepository ---

// mockProductRepo is a map-backed ProductRepository. AdjustVariantStock is
// guarded by a mutex and enforces the same conditional-decrement contract
// as the Mongo implementation, so concurrency tests exercise the real
// oversell guard.
type mockProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newMockProductRepo(products ...*models.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[primitive.ObjectID]*models.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	clone.Variants = append([]models.Variant(nil), p.Variants...)
	return &clone, nil
}

func (m *mockProductRepo) Find(_ context.Context, filter models.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.Featured && !p.IsFeatured {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepo) Suggestions(_ context.Context, query string, limit int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, id primitive.ObjectID, update bson.M) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if v, ok := update["is_active"]; ok {
		p.IsActive = v.(bool)
	}
	if v, ok := update["title"]; ok {
		p.Title = v.(string)
	}
	return p, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (m *mockProductRepo) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

func (m *mockProductRepo) CountByCategory(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.products {
		if p.Category == categoryID {
			n++
		}
	}
	return n, nil
}

func (m *mockProductRepo) IncrementViews(_ context.Context, ids []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			p.Views++
		}
	}
	return nil
}

func (m *mockProductRepo) AdjustVariantStock(_ context.Context, id primitive.ObjectID, variant models.VariantKey, stockDelta, salesDelta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	v := p.FindVariant(variant.Size, variant.Color)
	if v == nil {
		return repository.ErrNotFound
	}
	if stockDelta < 0 && v.Stock < -stockDelta {
		return repository.ErrInsufficientStock
	}
	v.Stock += stockDelta
	p.Sales += salesDelta
	return nil
}

func (m *mockProductRepo) stock(id primitive.ObjectID, size, color string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v := m.products[id].FindVariant(size, color); v != nil {
		return v.Stock
	}
	return -1
}

func (m *mockProductRepo) sales(id primitive.ObjectID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Sales
}

// --- Mock OrderRepository ---

type mockOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order

	failCreate bool
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return assertErr
	}
	order.ID = primitive.NewObjectID()
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *mockOrderRepo) FindByIDAndUser(_ context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.UserID != userID {
		return nil, repository.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *mockOrderRepo) FindByUser(_ context.Context, userID primitive.ObjectID, status string, page, limit int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID && (status == "" || o.OrderStatus == status) {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) FindAll(_ context.Context, status, search string, page, limit int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if status != "" && o.OrderStatus != status {
			continue
		}
		if search != "" && !strings.Contains(o.OrderNumber, search) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) Update(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderRepo) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}

func (m *mockOrderRepo) Revenue(context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, o := range m.orders {
		if o.OrderStatus == models.StatusShipped || o.OrderStatus == models.StatusDelivered {
			total += o.Pricing.Total
		}
	}
	return total, nil
}

// --- Mock CartRepository ---

type mockCartRepo struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
	idem  map[string]string

	failClear bool
	clears    int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]*models.Cart), idem: make(map[string]string)}
}

func (m *mockCartRepo) GetOrCreate(_ context.Context, userID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart, ok := m.carts[userID]; ok {
		clone := *cart
		clone.Items = append([]models.CartLine(nil), cart.Items...)
		return &clone, nil
	}
	return &models.Cart{UserID: userID, Items: []models.CartLine{}}, nil
}

func (m *mockCartRepo) Save(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *cart
	clone.Items = append([]models.CartLine(nil), cart.Items...)
	m.carts[cart.UserID] = &clone
	return nil
}

func (m *mockCartRepo) Clear(_ context.Context, userID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClear {
		return nil, assertErr
	}
	m.clears++
	cart := &models.Cart{UserID: userID, Items: []models.CartLine{}}
	m.carts[userID] = cart
	return cart, nil
}

// Idempotency keys mirror the Redis claim protocol: an empty value is an
// in-flight claim, a non-empty value is a completed order ID.

func (m *mockCartRepo) ClaimIdempotency(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if orderID, ok := m.idem[key]; ok {
		return orderID, false, nil
	}
	m.idem[key] = ""
	return "", true, nil
}

func (m *mockCartRepo) CompleteIdempotency(_ context.Context, key, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idem[key] = orderID
	return nil
}

func (m *mockCartRepo) ReleaseIdempotency(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idem, key)
	return nil
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepo) UpdateAddresses(_ context.Context, id primitive.ObjectID, addresses []models.UserAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Addresses = addresses
	return nil
}

func (m *mockUserRepo) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// --- Mock CouponRepository ---

type mockCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*models.Coupon
}

func newMockCouponRepo(coupons ...*models.Coupon) *mockCouponRepo {
	m := &mockCouponRepo{coupons: make(map[string]*models.Coupon)}
	for _, c := range coupons {
		m.coupons[c.Code] = c
	}
	return m
}

func (m *mockCouponRepo) Create(_ context.Context, coupon *models.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coupons[coupon.Code]; ok {
		return repository.ErrDuplicate
	}
	coupon.ID = primitive.NewObjectID()
	m.coupons[coupon.Code] = coupon
	return nil
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[strings.ToUpper(code)]
	if !ok || !c.Active {
		return nil, repository.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockCouponRepo) IncrementUsedCount(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[strings.ToUpper(code)]
	if !ok {
		return repository.ErrNotFound
	}
	c.UsedCount++
	return nil
}

func (m *mockCouponRepo) Deactivate(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[strings.ToUpper(code)]
	if !ok {
		return repository.ErrNotFound
	}
	c.Active = false
	return nil
}

func (m *mockCouponRepo) FindAll(_ context.Context, page, limit int) ([]models.Coupon, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Coupon
	for _, c := range m.coupons {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}
