package shop

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
)

type fakeCatalogStorage struct {
	nextID     uint
	shops      map[uint]*Shop
	categories map[uint]*Category
	products   map[uint]*Product
	users      map[uint]*auth.User
}

func newFakeCatalogStorage() *fakeCatalogStorage {
	return &fakeCatalogStorage{
		nextID:     1,
		shops:      make(map[uint]*Shop),
		categories: make(map[uint]*Category),
		products:   make(map[uint]*Product),
		users:      make(map[uint]*auth.User),
	}
}

func (f *fakeCatalogStorage) id() uint {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeCatalogStorage) CreateShop(shop *Shop) error {
	shop.ID = f.id()
	copied := *shop
	f.shops[shop.ID] = &copied
	return nil
}

func (f *fakeCatalogStorage) GetShopByID(id uint) (*Shop, error) {
	s, ok := f.shops[id]
	if !ok {
		return nil, ErrShopNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeCatalogStorage) ListShops() ([]Shop, error) {
	shops := make([]Shop, 0, len(f.shops))
	for _, s := range f.shops {
		shops = append(shops, *s)
	}
	return shops, nil
}

func (f *fakeCatalogStorage) ListShopsByAdmin(adminID uint) ([]Shop, error) {
	var shops []Shop
	for _, s := range f.shops {
		if s.AdminID == adminID {
			shops = append(shops, *s)
		}
	}
	return shops, nil
}

func (f *fakeCatalogStorage) SaveShop(shop *Shop) error {
	copied := *shop
	f.shops[shop.ID] = &copied
	return nil
}

func (f *fakeCatalogStorage) DeleteShop(id uint) error {
	for cid, c := range f.categories {
		if c.ShopID != id {
			continue
		}
		delete(f.categories, cid)
		for pid, p := range f.products {
			if p.CategoryID == cid {
				delete(f.products, pid)
			}
		}
	}
	delete(f.shops, id)
	return nil
}

func (f *fakeCatalogStorage) ReplaceAttendants(shop *Shop, attendants []auth.User) error {
	stored, ok := f.shops[shop.ID]
	if !ok {
		return ErrShopNotFound
	}
	stored.Attendants = attendants
	return nil
}

func (f *fakeCatalogStorage) GetUsersByIDs(ids []uint) ([]auth.User, error) {
	var users []auth.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeCatalogStorage) CreateCategory(category *Category) error {
	category.ID = f.id()
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCatalogStorage) GetCategoryByID(id uint) (*Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCatalogStorage) GetCategoryByNameAndShop(name string, shopID uint) (*Category, error) {
	for _, c := range f.categories {
		if c.Name == name && c.ShopID == shopID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (f *fakeCatalogStorage) ListCategoriesByShop(shopID uint) ([]Category, error) {
	var categories []Category
	for _, c := range f.categories {
		if c.ShopID == shopID {
			categories = append(categories, *c)
		}
	}
	return categories, nil
}

func (f *fakeCatalogStorage) ListSubcategories(parentID uint) ([]Category, error) {
	var categories []Category
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			categories = append(categories, *c)
		}
	}
	return categories, nil
}

func (f *fakeCatalogStorage) SaveCategory(category *Category) error {
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCatalogStorage) DeleteCategoryTree(categoryIDs []uint) error {
	for _, id := range categoryIDs {
		delete(f.categories, id)
		for pid, p := range f.products {
			if p.CategoryID == id {
				delete(f.products, pid)
			}
		}
	}
	return nil
}

func (f *fakeCatalogStorage) CreateProduct(product *Product) error {
	product.ID = f.id()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeCatalogStorage) GetProductByID(id uint) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeCatalogStorage) ListProductsByCategory(categoryID uint) ([]Product, error) {
	var products []Product
	for _, p := range f.products {
		if p.CategoryID == categoryID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (f *fakeCatalogStorage) ListProductsByShop(shopID uint) ([]Product, error) {
	var products []Product
	for _, p := range f.products {
		category, ok := f.categories[p.CategoryID]
		if ok && category.ShopID == shopID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (f *fakeCatalogStorage) SaveProduct(product *Product) error {
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeCatalogStorage) DeleteProduct(id uint) error {
	delete(f.products, id)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(userID uint, title, message, category string, referenceID uint) {}

func newTestLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestCatalog(t *testing.T) (CatalogService, *fakeCatalogStorage, auth.Actor) {
	t.Helper()
	storage := newFakeCatalogStorage()
	svc := NewService(storage, noopNotifier{}, newTestLogger())

	admin := auth.Actor{ID: 1, Username: "admin", Role: auth.RoleAdmin}
	_, err := svc.CreateShop(admin, ShopRequest{Name: "Wardrobe One", Location: "Nairobi"})
	require.NoError(t, err)
	return svc, storage, admin
}

func TestCreateShopRequiresCapability(t *testing.T) {
	storage := newFakeCatalogStorage()
	svc := NewService(storage, noopNotifier{}, newTestLogger())

	attendant := auth.Actor{ID: 5, Role: auth.RoleAttendant}
	_, err := svc.CreateShop(attendant, ShopRequest{Name: "Nope"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	customer := auth.Actor{ID: 6, Role: auth.RoleCustomer}
	_, err = svc.CreateShop(customer, ShopRequest{Name: "Nope"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestShopOwnershipEnforced(t *testing.T) {
	svc, _, admin := newTestCatalog(t)

	otherAdmin := auth.Actor{ID: 2, Role: auth.RoleAdmin}
	_, err := svc.UpdateShop(otherAdmin, 1, ShopRequest{Name: "Hijack"})
	assert.ErrorIs(t, err, ErrNotShopAdmin)

	super := auth.Actor{ID: 99, Role: auth.RoleSuperUser}
	shop, err := svc.UpdateShop(super, 1, ShopRequest{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", shop.Name)
	assert.Equal(t, admin.ID, shop.AdminID)
}

func TestCreateCategoryRejectsDuplicateNamePerShop(t *testing.T) {
	svc, _, admin := newTestCatalog(t)

	_, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1})
	require.NoError(t, err)

	_, err = svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1})
	assert.ErrorIs(t, err, ErrDuplicateCategory)
}

func TestCreateCategoryRejectsForeignParent(t *testing.T) {
	svc, _, admin := newTestCatalog(t)

	super := auth.Actor{ID: 99, Role: auth.RoleSuperUser}
	_, err := svc.CreateShop(super, ShopRequest{Name: "Other Shop"})
	require.NoError(t, err)

	foreign, err := svc.CreateCategory(super, CategoryRequest{Name: "Foreign", ShopID: 2})
	require.NoError(t, err)

	_, err = svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1, ParentID: &foreign.ID})
	assert.ErrorIs(t, err, ErrParentShopMismatch)
}

func TestUpdateCategoryPreventsCycles(t *testing.T) {
	svc, _, admin := newTestCatalog(t)

	root, err := svc.CreateCategory(admin, CategoryRequest{Name: "Clothing", ShopID: 1})
	require.NoError(t, err)
	mid, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1, ParentID: &root.ID})
	require.NoError(t, err)
	leaf, err := svc.CreateCategory(admin, CategoryRequest{Name: "T-Shirts", ShopID: 1, ParentID: &mid.ID})
	require.NoError(t, err)

	// Category cannot become its own parent.
	_, err = svc.UpdateCategory(admin, root.ID, CategoryRequest{Name: "Clothing", ShopID: 1, ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	// Re-parenting the root under its own descendant closes a loop.
	_, err = svc.UpdateCategory(admin, root.ID, CategoryRequest{Name: "Clothing", ShopID: 1, ParentID: &leaf.ID})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	// Moving a leaf under the root stays acyclic.
	moved, err := svc.UpdateCategory(admin, leaf.ID, CategoryRequest{Name: "T-Shirts", ShopID: 1, ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *moved.ParentID)
}

func TestDeleteCategoryRemovesSubtreeAndProducts(t *testing.T) {
	svc, storage, admin := newTestCatalog(t)

	root, err := svc.CreateCategory(admin, CategoryRequest{Name: "Clothing", ShopID: 1})
	require.NoError(t, err)
	child, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1, ParentID: &root.ID})
	require.NoError(t, err)
	sibling, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shoes", ShopID: 1})
	require.NoError(t, err)

	_, err = svc.CreateProduct(admin, ProductRequest{CategoryID: child.ID, Name: "Polo", Price: 25, Quantity: 5})
	require.NoError(t, err)
	kept, err := svc.CreateProduct(admin, ProductRequest{CategoryID: sibling.ID, Name: "Sneakers", Price: 60, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(admin, root.ID))

	_, err = storage.GetCategoryByID(root.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = storage.GetCategoryByID(child.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	products, err := storage.ListProductsByShop(1)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, kept.ID, products[0].ID)
}

func TestDeleteShopCascadesToCatalog(t *testing.T) {
	svc, storage, admin := newTestCatalog(t)

	root, err := svc.CreateCategory(admin, CategoryRequest{Name: "Clothing", ShopID: 1})
	require.NoError(t, err)
	child, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1, ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.CreateProduct(admin, ProductRequest{CategoryID: child.ID, Name: "Polo", Price: 25, Quantity: 5})
	require.NoError(t, err)

	// A second shop's catalog must survive the other shop's deletion.
	super := auth.Actor{ID: 99, Role: auth.RoleSuperUser}
	other, err := svc.CreateShop(super, ShopRequest{Name: "Other Shop"})
	require.NoError(t, err)
	keptCategory, err := svc.CreateCategory(super, CategoryRequest{Name: "Shoes", ShopID: other.ID})
	require.NoError(t, err)
	keptProduct, err := svc.CreateProduct(super, ProductRequest{CategoryID: keptCategory.ID, Name: "Sneakers", Price: 60, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteShop(admin, 1))

	_, err = storage.GetShopByID(1)
	assert.ErrorIs(t, err, ErrShopNotFound)
	_, err = storage.GetCategoryByID(root.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = storage.GetCategoryByID(child.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	orphans, err := storage.ListProductsByShop(1)
	require.NoError(t, err)
	assert.Empty(t, orphans, "deleting a shop must not leave orphaned products")

	_, err = storage.GetCategoryByID(keptCategory.ID)
	assert.NoError(t, err)
	_, err = storage.GetProductByID(keptProduct.ID)
	assert.NoError(t, err)
}

func TestRecreateCategoryAfterDelete(t *testing.T) {
	svc, _, admin := newTestCatalog(t)

	category, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(admin, category.ID))

	// The old name is free again once the category is gone.
	recreated, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1})
	require.NoError(t, err)
	assert.NotEqual(t, category.ID, recreated.ID)
}

func TestCategoryTreeNestsChildrenAndProducts(t *testing.T) {
	svc, _, admin := newTestCatalog(t)

	root, err := svc.CreateCategory(admin, CategoryRequest{Name: "Clothing", ShopID: 1})
	require.NoError(t, err)
	child, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1, ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.CreateProduct(admin, ProductRequest{CategoryID: child.ID, Name: "Polo", Price: 25, Quantity: 5})
	require.NoError(t, err)

	tree, err := svc.CategoryTree(admin, 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].Category.ID)
	require.Len(t, tree[0].Subcategories, 1)
	assert.Equal(t, child.ID, tree[0].Subcategories[0].Category.ID)
	require.Len(t, tree[0].Subcategories[0].Products, 1)
	assert.Equal(t, "Polo", tree[0].Subcategories[0].Products[0].Name)
}

func TestProductValidation(t *testing.T) {
	svc, _, admin := newTestCatalog(t)

	category, err := svc.CreateCategory(admin, CategoryRequest{Name: "Shirts", ShopID: 1})
	require.NoError(t, err)

	_, err = svc.CreateProduct(admin, ProductRequest{CategoryID: category.ID, Name: "Polo", Price: 0, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.CreateProduct(admin, ProductRequest{CategoryID: category.ID, Name: "Polo", Price: 10, Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.CreateProduct(admin, ProductRequest{CategoryID: category.ID, Name: "  ", Price: 10, Quantity: 1})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestAssignAttendants(t *testing.T) {
	svc, storage, admin := newTestCatalog(t)

	shopID := uint(1)
	storage.users[10] = &auth.User{Username: "anna", Role: auth.RoleAttendant, ShopID: &shopID}
	storage.users[10].ID = 10
	storage.users[11] = &auth.User{Username: "ben", Role: auth.RoleAttendant, ShopID: &shopID}
	storage.users[11].ID = 11

	shop, err := svc.AssignAttendants(admin, shopID, []uint{10, 11})
	require.NoError(t, err)
	assert.Len(t, shop.Attendants, 2)
}
