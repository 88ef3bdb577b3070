package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDeliveryAddress(t *testing.T) {
	raw := `{"fullname":"Asha Rao","house":"12B","road":"MG Road","city":"Pune","state":"MH","pincode":"411001","phone":"9999999999","email":"asha@example.com"}`

	addr := ParseDeliveryAddress(raw)

	assert.Equal(t, &DeliveryAddress{
		Name:    "Asha Rao",
		Address: "12B, MG Road",
		City:    "Pune",
		State:   "MH",
		Zip:     "411001",
		Phone:   "9999999999",
		Email:   "asha@example.com",
	}, addr)
}

func TestParseDeliveryAddressSkipsEmptyParts(t *testing.T) {
	addr := ParseDeliveryAddress(`{"fullname":"A","road":"Ring Rd"}`)
	assert.Equal(t, "Ring Rd", addr.Address)
	assert.Empty(t, addr.Address2)
}

func TestParseDeliveryAddressInvalid(t *testing.T) {
	assert.Equal(t, &DeliveryAddress{}, ParseDeliveryAddress("not json"))
	assert.Equal(t, &DeliveryAddress{}, ParseDeliveryAddress(""))
}

func TestStockLabel(t *testing.T) {
	assert.Equal(t, StockLow, StockLabel("low stock", 500, 10))
	assert.Equal(t, StockOut, StockLabel("", 0, 10))
	assert.Equal(t, StockLow, StockLabel("", 3, 10))
	assert.Equal(t, StockIn, StockLabel("bogus", 10, 10))
}

func TestIsWarehouse(t *testing.T) {
	assert.True(t, IsWarehouse("Delhi-warehouse"))
	assert.True(t, IsWarehouse("mumbai-warehouse"))
	assert.False(t, IsWarehouse("Pune-warehouse"))
}
