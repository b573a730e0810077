package cache

import "fmt"

// KeyPrefix namespaces every storefront key in the shared Redis instance.
const KeyPrefix = "storefront:"

// Fixed keys. Token, current-user pointer, cached profile and the catalog
// snapshot are singletons; everything else is namespaced per user.
const (
	KeyToken       = KeyPrefix + "token"
	KeyCurrentUser = KeyPrefix + "current_user"
	KeyUserData    = KeyPrefix + "user_data"
	KeyCatalog     = KeyPrefix + "catalog"
)

// KeyFavorites is the per-user favorites mirror.
func KeyFavorites(userID string) string {
	return fmt.Sprintf("%sfavorites:%s", KeyPrefix, userID)
}

// KeyOrders is the per-user orders mirror.
func KeyOrders(userID string) string {
	return fmt.Sprintf("%sorders:%s", KeyPrefix, userID)
}

// KeyBasket is the per-user (or guest) basket mirror.
func KeyBasket(userID string) string {
	return fmt.Sprintf("%sbasket:%s", KeyPrefix, userID)
}
