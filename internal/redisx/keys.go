package redisx

import "fmt"

const (
	// Aggregate product list view: products:list:v1
	KeyProductList = "products:list:v1"

	// Single product view: product:{product_id}:v1
	KeyProduct = "product:%s:v1"
)

func ProductKey(productID string) string { return fmt.Sprintf(KeyProduct, productID) }
