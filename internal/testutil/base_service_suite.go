package testutil

import (
	"context"
	"time"

	"github.com/gpinvoice/invoicegen/internal/cache"
	"github.com/gpinvoice/invoicegen/internal/config"
	"github.com/gpinvoice/invoicegen/internal/export"
	"github.com/gpinvoice/invoicegen/internal/kvstore"
	"github.com/gpinvoice/invoicegen/internal/logger"
	"github.com/gpinvoice/invoicegen/internal/share"
	"github.com/gpinvoice/invoicegen/internal/types"
	"github.com/gpinvoice/invoicegen/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Stores holds the storage collaborators of the services under test
type Stores struct {
	InvoiceRepo   *InMemoryInvoiceStore
	SequenceStore *kvstore.MemoryStore
	DraftCache    cache.Cache
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
	rasterizer *MockRasterizer
	native     *MockNativeSharer
	links      *MockLinkResolver
	saver      *MemorySaver
	exporter   *export.Exporter
	sharer     *share.Sharer
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo
	s.config.Store.Backend = types.StoreBackendBolt
	s.config.Cache.Backend = types.CacheBackendMemory
	s.logger = logger.NewNoopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	s.setupStores()
	s.setupPipelines()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stores.InvoiceRepo.Clear()
	s.stores.DraftCache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) setupStores() {
	invoices := NewInMemoryInvoiceStore()
	clock := s.now
	invoices.SetClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	s.stores = Stores{
		InvoiceRepo:   invoices,
		SequenceStore: kvstore.NewMemoryStore(0),
		DraftCache:    cache.NewInMemoryCache(s.config, s.logger),
	}
}

// setupPipelines wires the export and share pipelines to mocks. The rasterizer
// renders a small page and the host has no native share unless a test says so.
func (s *BaseServiceTestSuite) setupPipelines() {
	s.rasterizer = new(MockRasterizer)
	s.rasterizer.On("Rasterize", mock.Anything, mock.Anything).Return(SampleImage(84, 120), nil).Maybe()

	s.native = new(MockNativeSharer)
	s.native.On("CanShare", mock.Anything).Return(false).Maybe()

	s.links = new(MockLinkResolver)
	s.saver = NewMemorySaver()

	s.exporter = export.NewExporter(s.rasterizer, s.saver, s.logger)
	s.sharer = share.NewSharer(s.exporter, s.native, s.links, s.logger)
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the fixed test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

func (s *BaseServiceTestSuite) GetRasterizer() *MockRasterizer {
	return s.rasterizer
}

func (s *BaseServiceTestSuite) GetNativeSharer() *MockNativeSharer {
	return s.native
}

func (s *BaseServiceTestSuite) GetLinkResolver() *MockLinkResolver {
	return s.links
}

func (s *BaseServiceTestSuite) GetSaver() *MemorySaver {
	return s.saver
}

func (s *BaseServiceTestSuite) GetExporter() *export.Exporter {
	return s.exporter
}

func (s *BaseServiceTestSuite) GetSharer() *share.Sharer {
	return s.sharer
}
