package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"barterhub/internal/interfaces"
)

var ErrCommerceDisabled = errors.New("commerce api not configured")

// ServiceCommerce creates discount codes and orders through the store's REST API.
type ServiceCommerce struct {
	*ServiceHTTP
	baseURL string
	apiKey  string
}

func NewServiceCommerce(client *ServiceHTTP, baseURL, apiKey string) *ServiceCommerce {
	return &ServiceCommerce{client, strings.TrimRight(baseURL, "/"), apiKey}
}

type commerceCreated struct {
	ID string `json:"id"`
}

func (service *ServiceCommerce) headers() http.Header {
	headers := http.Header{}
	headers.Set("X-Api-Key", service.apiKey)
	return headers
}

func (service *ServiceCommerce) CreateDiscountCode(ctx context.Context, req interfaces.DiscountRequest) (string, error) {
	if service.baseURL == "" {
		return "", ErrCommerceDisabled
	}

	body := map[string]any{
		"code":        req.Code,
		"percent":     req.Percent,
		"product_ids": req.ProductIDs,
		"brand_id":    req.BrandID,
		"usage_limit": 1,
	}
	var out commerceCreated
	if err := service.doJSON(ctx, http.MethodPost, service.baseURL+"/discounts", service.headers(), body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (service *ServiceCommerce) CreateOrder(ctx context.Context, req interfaces.OrderRequest) (string, error) {
	if service.baseURL == "" {
		return "", ErrCommerceDisabled
	}

	body := map[string]any{
		"reference":   req.Reference,
		"brand_id":    req.BrandID,
		"product_ids": req.ProductIDs,
		"price":       0,
		"shipping_address": map[string]string{
			"name":        req.Recipient.DisplayName,
			"line1":       req.Recipient.AddressLine1,
			"city":        req.Recipient.City,
			"postal_code": req.Recipient.PostalCode,
			"country":     req.Recipient.AddressCountry,
		},
	}
	var out commerceCreated
	if err := service.doJSON(ctx, http.MethodPost, service.baseURL+"/orders", service.headers(), body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}
