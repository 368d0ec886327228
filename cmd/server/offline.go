package main

import (
	"context"

	"github.com/artcase/storefront/internal/domain/session"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/artapi"
)

// offlineService stands in for the art service's auth and write side when the
// storefront runs on the sample catalog
type offlineService struct{}

func (offlineService) Login(context.Context, string, string) (session.UserSession, error) {
	return session.UserSession{}, shared.ErrUpstream
}

func (offlineService) Register(context.Context, string, string, string) (session.UserSession, error) {
	return session.UserSession{}, shared.ErrUpstream
}

func (offlineService) UploadImages(context.Context, string, []artapi.Upload) ([]string, error) {
	return nil, shared.ErrUpstream
}

func (offlineService) CreateProduct(context.Context, string, artapi.NewProduct) error {
	return shared.ErrUpstream
}
