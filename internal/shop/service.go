package shop

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
)

// Notifier is the best-effort notification sink. Implementations must never
// fail the calling mutation.
type Notifier interface {
	Notify(userID uint, title, message, category string, referenceID uint)
}

type ShopRequest struct {
	Name        string `json:"name" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	ShopID      uint   `json:"shop" binding:"required"`
	ParentID    *uint  `json:"parent"`
	Description string `json:"description"`
}

type ProductRequest struct {
	CategoryID  uint    `json:"category" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Size        string  `json:"size"`
	Color       string  `json:"color"`
}

type CatalogService interface {
	CreateShop(actor auth.Actor, req ShopRequest) (*Shop, error)
	UpdateShop(actor auth.Actor, id uint, req ShopRequest) (*Shop, error)
	DeleteShop(actor auth.Actor, id uint) error
	ListShops(actor auth.Actor) ([]Shop, error)
	GetShop(actor auth.Actor, id uint) (*Shop, error)
	AssignAttendants(actor auth.Actor, shopID uint, userIDs []uint) (*Shop, error)
	CategoryTree(actor auth.Actor, shopID uint) ([]CategoryNode, error)

	CreateCategory(actor auth.Actor, req CategoryRequest) (*Category, error)
	UpdateCategory(actor auth.Actor, id uint, req CategoryRequest) (*Category, error)
	DeleteCategory(actor auth.Actor, id uint) error
	CategoryWithChildren(actor auth.Actor, id uint) (*CategoryNode, error)

	CreateProduct(actor auth.Actor, req ProductRequest) (*Product, error)
	UpdateProduct(actor auth.Actor, id uint, req ProductRequest) (*Product, error)
	DeleteProduct(actor auth.Actor, id uint) error
	GetProduct(id uint) (*Product, error)
}

type catalogService struct {
	storage  Storage
	notifier Notifier
	logger   *logrus.Entry
}

func NewService(storage Storage, notifier Notifier, log *logrus.Entry) CatalogService {
	return &catalogService{
		storage:  storage,
		notifier: notifier,
		logger:   log,
	}
}

func (s *catalogService) CreateShop(actor auth.Actor, req ShopRequest) (*Shop, error) {
	if !auth.Allow(actor, auth.CapManageShop) {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	shop := &Shop{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		AdminID:     actor.ID,
	}
	if err := s.storage.CreateShop(shop); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor.ID, "New Shop Created",
		fmt.Sprintf("A new shop '%s' has been created.", shop.Name), "Shop", shop.ID)
	return shop, nil
}

func (s *catalogService) UpdateShop(actor auth.Actor, id uint, req ShopRequest) (*Shop, error) {
	shop, err := s.ownedShop(actor, id)
	if err != nil {
		return nil, err
	}

	shop.Name = req.Name
	shop.Location = req.Location
	shop.Description = req.Description
	if err := s.storage.SaveShop(shop); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor.ID, "Shop Updated",
		fmt.Sprintf("The shop '%s' has been updated.", shop.Name), "Shop", shop.ID)
	return shop, nil
}

func (s *catalogService) DeleteShop(actor auth.Actor, id uint) error {
	shop, err := s.ownedShop(actor, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteShop(shop.ID); err != nil {
		return err
	}

	s.notifier.Notify(actor.ID, "Shop Deleted",
		fmt.Sprintf("The shop '%s' has been deleted.", shop.Name), "Shop", shop.ID)
	return nil
}

func (s *catalogService) ListShops(actor auth.Actor) ([]Shop, error) {
	if actor.Role == auth.RoleSuperUser {
		return s.storage.ListShops()
	}
	return s.storage.ListShopsByAdmin(actor.ID)
}

func (s *catalogService) GetShop(actor auth.Actor, id uint) (*Shop, error) {
	return s.storage.GetShopByID(id)
}

func (s *catalogService) AssignAttendants(actor auth.Actor, shopID uint, userIDs []uint) (*Shop, error) {
	shop, err := s.ownedShop(actor, shopID)
	if err != nil {
		return nil, err
	}

	users, err := s.storage.GetUsersByIDs(userIDs)
	if err != nil {
		return nil, err
	}
	if err := s.storage.ReplaceAttendants(shop, users); err != nil {
		return nil, err
	}
	return s.storage.GetShopByID(shopID)
}

// CategoryTree lists a shop's categories as a tree with nested products.
// Children are resolved through a parent-id index built in one pass.
func (s *catalogService) CategoryTree(actor auth.Actor, shopID uint) ([]CategoryNode, error) {
	if _, err := s.storage.GetShopByID(shopID); err != nil {
		return nil, err
	}

	categories, err := s.storage.ListCategoriesByShop(shopID)
	if err != nil {
		return nil, err
	}

	children := make(map[uint][]Category)
	var roots []Category
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	nodes := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		node, err := s.buildNode(root, children)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (s *catalogService) buildNode(category Category, children map[uint][]Category) (CategoryNode, error) {
	products, err := s.storage.ListProductsByCategory(category.ID)
	if err != nil {
		return CategoryNode{}, err
	}

	node := CategoryNode{
		Category:      category,
		Subcategories: []CategoryNode{},
		Products:      products,
	}
	for _, child := range children[category.ID] {
		childNode, err := s.buildNode(child, children)
		if err != nil {
			return CategoryNode{}, err
		}
		node.Subcategories = append(node.Subcategories, childNode)
	}
	return node, nil
}

func (s *catalogService) CreateCategory(actor auth.Actor, req CategoryRequest) (*Category, error) {
	if _, err := s.ownedShop(actor, req.ShopID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}

	if _, err := s.storage.GetCategoryByNameAndShop(req.Name, req.ShopID); err == nil {
		return nil, ErrDuplicateCategory
	}

	if req.ParentID != nil {
		parent, err := s.storage.GetCategoryByID(*req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ShopID != req.ShopID {
			return nil, ErrParentShopMismatch
		}
	}

	category := &Category{
		Name:        req.Name,
		ShopID:      req.ShopID,
		ParentID:    req.ParentID,
		Description: req.Description,
	}
	if err := s.storage.CreateCategory(category); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor.ID, "New Category Created",
		fmt.Sprintf("A new category '%s' has been created.", category.Name), "Category", category.ID)
	return category, nil
}

func (s *catalogService) UpdateCategory(actor auth.Actor, id uint, req CategoryRequest) (*Category, error) {
	category, err := s.storage.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedShop(actor, category.ShopID); err != nil {
		return nil, err
	}

	if req.Name != category.Name {
		if _, err := s.storage.GetCategoryByNameAndShop(req.Name, category.ShopID); err == nil {
			return nil, ErrDuplicateCategory
		}
	}

	if req.ParentID != nil {
		if err := s.checkParent(category, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category.Name = req.Name
	category.ParentID = req.ParentID
	category.Description = req.Description
	if err := s.storage.SaveCategory(category); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor.ID, "Category Updated",
		fmt.Sprintf("The category '%s' has been updated.", category.Name), "Category", category.ID)
	return category, nil
}

// checkParent rejects re-parenting that would break the acyclic tree
// invariant: the new parent must belong to the same shop and must not be the
// category itself or any of its descendants.
func (s *catalogService) checkParent(category *Category, parentID uint) error {
	if parentID == category.ID {
		return ErrCategoryCycle
	}

	parent, err := s.storage.GetCategoryByID(parentID)
	if err != nil {
		return err
	}
	if parent.ShopID != category.ShopID {
		return ErrParentShopMismatch
	}

	seen := map[uint]bool{category.ID: true}
	current := parent
	for current.ParentID != nil {
		if seen[*current.ParentID] {
			return ErrCategoryCycle
		}
		seen[current.ID] = true
		next, err := s.storage.GetCategoryByID(*current.ParentID)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (s *catalogService) DeleteCategory(actor auth.Actor, id uint) error {
	category, err := s.storage.GetCategoryByID(id)
	if err != nil {
		return err
	}
	if _, err := s.ownedShop(actor, category.ShopID); err != nil {
		return err
	}

	ids, err := s.collectSubtree(category.ID)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteCategoryTree(ids); err != nil {
		return err
	}

	s.notifier.Notify(actor.ID, "Category Deleted",
		fmt.Sprintf("The category '%s' has been deleted.", category.Name), "Category", category.ID)
	return nil
}

func (s *catalogService) collectSubtree(id uint) ([]uint, error) {
	ids := []uint{id}
	queue := []uint{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		subs, err := s.storage.ListSubcategories(current)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			ids = append(ids, sub.ID)
			queue = append(queue, sub.ID)
		}
	}
	return ids, nil
}

func (s *catalogService) CategoryWithChildren(actor auth.Actor, id uint) (*CategoryNode, error) {
	category, err := s.storage.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	products, err := s.storage.ListProductsByCategory(category.ID)
	if err != nil {
		return nil, err
	}
	subs, err := s.storage.ListSubcategories(category.ID)
	if err != nil {
		return nil, err
	}

	node := &CategoryNode{
		Category:      *category,
		Subcategories: make([]CategoryNode, 0, len(subs)),
		Products:      products,
	}
	for _, sub := range subs {
		subProducts, err := s.storage.ListProductsByCategory(sub.ID)
		if err != nil {
			return nil, err
		}
		node.Subcategories = append(node.Subcategories, CategoryNode{
			Category:      sub,
			Subcategories: []CategoryNode{},
			Products:      subProducts,
		})
	}
	return node, nil
}

func (s *catalogService) CreateProduct(actor auth.Actor, req ProductRequest) (*Product, error) {
	category, err := s.storage.GetCategoryByID(req.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedShop(actor, category.ShopID); err != nil {
		return nil, err
	}
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product := &Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Size:        req.Size,
		Color:       req.Color,
	}
	if err := s.storage.CreateProduct(product); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor.ID, "New Product Created",
		fmt.Sprintf("A new product '%s' has been added.", product.Name), "Product", product.ID)
	return product, nil
}

func (s *catalogService) UpdateProduct(actor auth.Actor, id uint, req ProductRequest) (*Product, error) {
	product, err := s.storage.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	category, err := s.storage.GetCategoryByID(product.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedShop(actor, category.ShopID); err != nil {
		return nil, err
	}
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Quantity = req.Quantity
	product.Size = req.Size
	product.Color = req.Color
	if err := s.storage.SaveProduct(product); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor.ID, "Product Updated",
		fmt.Sprintf("The product '%s' has been updated.", product.Name), "Product", product.ID)
	return product, nil
}

func (s *catalogService) DeleteProduct(actor auth.Actor, id uint) error {
	product, err := s.storage.GetProductByID(id)
	if err != nil {
		return err
	}

	category, err := s.storage.GetCategoryByID(product.CategoryID)
	if err != nil {
		return err
	}
	if _, err := s.ownedShop(actor, category.ShopID); err != nil {
		return err
	}

	if err := s.storage.DeleteProduct(id); err != nil {
		return err
	}

	s.notifier.Notify(actor.ID, "Product Deleted",
		fmt.Sprintf("The product '%s' has been deleted.", product.Name), "Product", product.ID)
	return nil
}

func (s *catalogService) GetProduct(id uint) (*Product, error) {
	return s.storage.GetProductByID(id)
}

// ownedShop loads the shop and checks the actor may manage it: catalog
// capability plus ownership (SuperUser bypasses ownership).
func (s *catalogService) ownedShop(actor auth.Actor, shopID uint) (*Shop, error) {
	if !auth.Allow(actor, auth.CapManageCatalog) {
		return nil, ErrUnauthorized
	}

	shop, err := s.storage.GetShopByID(shopID)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleSuperUser && shop.AdminID != actor.ID {
		return nil, ErrNotShopAdmin
	}
	return shop, nil
}

func validateProduct(req ProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrEmptyName
	}
	if req.Price <= 0 {
		return ErrInvalidPrice
	}
	if req.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}
