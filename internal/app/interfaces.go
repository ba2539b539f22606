package app

import (
	"context"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/advisor"
	"github.com/britishfeed/feedstore/internal/blob"
	"github.com/britishfeed/feedstore/internal/catalog"
	"github.com/britishfeed/feedstore/internal/inquiry"
	"github.com/britishfeed/feedstore/internal/kv"
	"github.com/robfig/cron/v3"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StorageProvider provides the raw key-value store
type StorageProvider interface {
	KV() kv.Store
}

// CatalogProvider provides the product catalog and its cached public view
type CatalogProvider interface {
	Catalog() *catalog.Store
	PublicCatalog() *catalog.PublicView
}

// BlobProvider provides image blob storage
type BlobProvider interface {
	Blobs() *blob.Store
}

// AdvisorProvider provides the chat assistant and its settings
type AdvisorProvider interface {
	Advisor() *advisor.Advisor
	ChatSettings() *advisor.Settings
}

// InquiryProvider provides contact-form storage
type InquiryProvider interface {
	Inquiries() *inquiry.Store
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	StorageProvider
	CatalogProvider
	BlobProvider
	AdvisorProvider
	InquiryProvider
	SchedulerProvider

	// OrphanImages reports stored images no product references
	OrphanImages(ctx context.Context) (*OrphanReport, error)
}
