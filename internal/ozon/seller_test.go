package ozon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSellerRef(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"numeric passthrough", "778899", "778899"},
		{"slug url", "https://www.ozon.ru/seller/magazin-shoes-778899/products/", "778899"},
		{"bare id url", "https://www.ozon.ru/seller/778899/", "778899"},
		{"id url without trailing slash", "https://www.ozon.ru/seller/magazin-shoes-778899", "778899"},
		{"miniapp param", "https://www.ozon.ru/seller/whatever/?miniapp=seller_12345", "12345"},
		{"miniapp wins over path", "https://www.ozon.ru/seller/shop-99/?miniapp=seller_11", "11"},
		{"no digits", "https://www.ozon.ru/seller/magazin-shoes/", ""},
		{"unrelated url", "https://www.ozon.ru/category/obuv/", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveSellerRef(tt.ref))
		})
	}
}
