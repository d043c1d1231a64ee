package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	adaptconfig "github.com/rafaelleal24/catalog/internal/adapters/config"
	adapthttp "github.com/rafaelleal24/catalog/internal/adapters/http"
	"github.com/rafaelleal24/catalog/internal/adapters/http/controllers"
	"github.com/rafaelleal24/catalog/internal/adapters/http/middleware"
	"github.com/rafaelleal24/catalog/internal/adapters/mongo/repository"
	"github.com/rafaelleal24/catalog/internal/adapters/outbox"
	adaptrabbitmq "github.com/rafaelleal24/catalog/internal/adapters/rabbitmq"
	adaptredis "github.com/rafaelleal24/catalog/internal/adapters/redis"
	"github.com/rafaelleal24/catalog/internal/adapters/storage"
	"github.com/rafaelleal24/catalog/internal/core/domain"
	"github.com/rafaelleal24/catalog/internal/core/service"
	"github.com/rafaelleal24/catalog/internal/core/validation"
	"github.com/spf13/afero"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	tcrabbit "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	mongoClient  *mongo.Client
	redisClient  *adaptredis.Client
	broker       *adaptrabbitmq.RabbitMQAdapter
	amqpEndpoint string
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestMain(m *testing.M) {
	ctx := context.Background()
	gin.SetMode(gin.TestMode)

	mongoContainer, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	if err != nil {
		log.Fatalf("mongodb container: %v", err)
	}
	mongoEndpoint, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("mongodb connection string: %v", err)
	}
	mongoClient, err = mongo.Connect(ctx, options.Client().
		ApplyURI(mongoEndpoint).
		SetDirect(true).
		SetConnectTimeout(30*time.Second).
		SetServerSelectionTimeout(30*time.Second))
	if err != nil {
		log.Fatalf("mongodb connect: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("mongodb ping: %v", err)
	}

	// --- Redis ---
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		log.Fatalf("redis container: %v", err)
	}
	redisEndpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("redis connection string: %v", err)
	}
	redisClient, err = adaptredis.NewConnection(adaptconfig.RedisConfig{URL: redisEndpoint})
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}

	// --- RabbitMQ ---
	rabbitContainer, err := tcrabbit.Run(ctx, "rabbitmq:3-management-alpine")
	if err != nil {
		log.Fatalf("rabbitmq container: %v", err)
	}
	amqpEndpoint, err = rabbitContainer.AmqpURL(ctx)
	if err != nil {
		log.Fatalf("rabbitmq amqp url: %v", err)
	}
	broker, err = adaptrabbitmq.NewRabbitMQAdapter(adaptconfig.RabbitMQConfig{
		URL:        amqpEndpoint,
		MaxRetries: 2,
		RetryDelay: 100 * time.Millisecond,
		ExchangeConfigs: []adaptconfig.ExchangeConfig{
			{Name: "exchange.product", Type: "direct", Durable: true, AutoDelete: false},
		},
	})
	if err != nil {
		log.Fatalf("rabbitmq adapter: %v", err)
	}

	code := m.Run()

	_ = broker.Close()
	_ = redisClient.Close()
	_ = mongoClient.Disconnect(ctx)
	_ = mongoContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	_ = rabbitContainer.Terminate(ctx)

	os.Exit(code)
}

type testApp struct {
	engine *gin.Engine
	db     *mongo.Database
	dir    string
	outbox *outbox.Handler
}

type appOptions struct {
	withOutbox  bool
	rateLimiter middleware.RateLimiter
	rateLimit   int
}

func newTestApp(t *testing.T, dbName string, opts appOptions) *testApp {
	t.Helper()

	cfg := &adaptconfig.Config{
		App: adaptconfig.AppConfig{Environment: "production"},
		Upload: adaptconfig.UploadConfig{
			Dir:          t.TempDir(),
			PublicPath:   "/uploads",
			MaxBytes:     500 * 1024,
			AllowedTypes: []string{"image/png", "image/jpeg", "image/jpg"},
		},
		RateLimit: adaptconfig.RateLimitConfig{CreateProductLimit: opts.rateLimit, Window: time.Minute},
	}

	db := mongoClient.Database(dbName)
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	imageStore, err := storage.NewDiskImageStore(afero.NewOsFs(), cfg.Upload)
	if err != nil {
		t.Fatalf("image store: %v", err)
	}

	app := &testApp{db: db, dir: cfg.Upload.Dir}

	var outboxRepo outbox.Repository
	if opts.withOutbox {
		outboxRepo = repository.NewOutboxRepository(db)
		app.outbox = outbox.NewHandler(outboxRepo, broker, adaptconfig.OutboxConfig{
			Interval:  100 * time.Millisecond,
			BatchSize: 50,
		})
	}

	productService := service.NewProductService(
		repository.NewProductRepository(db, outboxRepo),
		imageStore,
		validation.NewValidator(cfg.Upload.AllowedTypes, cfg.Upload.MaxBytes),
	)
	healthController := controllers.NewHealthController([]controllers.HealthChecker{
		{Name: "mongodb", Check: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
		{Name: "uploads", Check: imageStore.HealthCheck},
	})

	router := adapthttp.NewRouter(
		healthController,
		controllers.NewProductController(productService),
		imageStore,
		opts.rateLimiter,
		cfg,
	)
	app.engine = router.Engine()
	return app
}

type upload struct {
	filename    string
	contentType string
	content     []byte
}

func (a *testApp) postProduct(t *testing.T, name, description, price string, file *upload, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("name", name)
	_ = w.WriteField("description", description)
	_ = w.WriteField("price", price)
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(file.content)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/products", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

type productView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"imageUrl"`
}

func (a *testApp) listProducts(t *testing.T) []productView {
	t.Helper()
	rec := a.get("/products")
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", rec.Code)
	}
	var body struct {
		Message string        `json:"message"`
		Data    []productView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if body.Data == nil {
		t.Fatalf("expected data array, got %s", rec.Body.String())
	}
	return body.Data
}

func (a *testApp) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (a *testApp) productCount(t *testing.T) int64 {
	t.Helper()
	n, err := a.db.Collection("products").CountDocuments(context.Background(), bson.M{})
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	return n
}

type fieldErrors struct {
	Message string `json:"message"`
	Data    []struct {
		Field string `json:"field"`
		Msg   string `json:"msg"`
	} `json:"data"`
}

func decodeFieldErrors(t *testing.T, rec *httptest.ResponseRecorder) fieldErrors {
	t.Helper()
	var body fieldErrors
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode errors: %v (%s)", err, rec.Body.String())
	}
	return body
}

func widgetPNG(size int) *upload {
	content := make([]byte, size)
	copy(content, pngHeader)
	return &upload{filename: "widget.png", contentType: "image/png", content: content}
}

func TestIntegration_CreateProduct_Widget(t *testing.T) {
	app := newTestApp(t, "int_widget", appOptions{})

	rec := app.postProduct(t, "Widget", "A widget", "9", widgetPNG(10*1024), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Message string `json:"message"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Message != "success" || len(created.Data.ID) != 24 {
		t.Fatalf("unexpected created body %s", rec.Body.String())
	}

	products := app.listProducts(t)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.ID != created.Data.ID || p.Name != "Widget" || p.Description != "A widget" || p.Price != 9 {
		t.Fatalf("unexpected product %+v", p)
	}

	files := app.storedFiles(t)
	if len(files) != 1 {
		t.Fatalf("expected 1 stored file, got %v", files)
	}
	if p.ImageURL != "/uploads/"+files[0] {
		t.Fatalf("expected image url to reference %q, got %q", files[0], p.ImageURL)
	}

	served := app.get(p.ImageURL)
	if served.Code != http.StatusOK || served.Body.Len() != 10*1024 {
		t.Fatalf("expected stored image to be served, got %d with %d bytes", served.Code, served.Body.Len())
	}
}

func TestIntegration_CreateProduct_NegativePrice(t *testing.T) {
	app := newTestApp(t, "int_negative_price", appOptions{})

	rec := app.postProduct(t, "Widget", "A widget", "-5", widgetPNG(10*1024), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeFieldErrors(t, rec)
	if len(body.Data) != 1 || body.Data[0].Field != "price" {
		t.Fatalf("expected a single price error, got %+v", body.Data)
	}
	if n := app.productCount(t); n != 0 {
		t.Fatalf("expected no products, got %d", n)
	}
	if files := app.storedFiles(t); len(files) != 0 {
		t.Fatalf("expected staged image to be removed, found %v", files)
	}
}

func TestIntegration_CreateProduct_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		file      *upload
		wantField string
		wantMsg   string
	}{
		{"missing image", "9", nil, "image", "file is required"},
		{"wrong type", "9", &upload{filename: "notes.txt", contentType: "text/plain", content: []byte("hello")}, "image", "invalid file type"},
		{"oversized", "9", widgetPNG(500*1024 + 1), "image", "invalid file size"},
		{"non integer price", "9.5", widgetPNG(1024), "price", "must be non negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, "int_reject", appOptions{})

			rec := app.postProduct(t, "Widget", "A widget", tt.price, tt.file, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			body := decodeFieldErrors(t, rec)
			if body.Message != "validation error" {
				t.Fatalf("unexpected message %q", body.Message)
			}
			found := false
			for _, fe := range body.Data {
				if fe.Field == tt.wantField && fe.Msg == tt.wantMsg {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s: %s, got %+v", tt.wantField, tt.wantMsg, body.Data)
			}
			if n := app.productCount(t); n != 0 {
				t.Fatalf("expected no products, got %d", n)
			}
			if files := app.storedFiles(t); len(files) != 0 {
				t.Fatalf("expected no stored files, found %v", files)
			}
		})
	}
}

func TestIntegration_CreateProduct_SizeCeilingIsInclusive(t *testing.T) {
	app := newTestApp(t, "int_size_ceiling", appOptions{})

	rec := app.postProduct(t, "Widget", "A widget", "9", widgetPNG(500*1024), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIntegration_GetAll_Idempotent(t *testing.T) {
	app := newTestApp(t, "int_idempotent", appOptions{})

	if products := app.listProducts(t); len(products) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(products))
	}

	for _, name := range []string{"Widget", "Gadget"} {
		if rec := app.postProduct(t, name, "test", "1", widgetPNG(1024), ""); rec.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", name, rec.Code)
		}
	}

	first := app.get("/products").Body.String()
	second := app.get("/products").Body.String()
	if first != second {
		t.Fatalf("expected identical listings:\n%s\n%s", first, second)
	}
}

func TestIntegration_CreateProduct_PublishesEvent(t *testing.T) {
	msgs := setupConsumer(t, domain.ProductCreatedEventName)
	app := newTestApp(t, "int_outbox", appOptions{withOutbox: true})

	handlerCtx, cancelHandler := context.WithCancel(context.Background())
	defer cancelHandler()
	go app.outbox.Start(handlerCtx)

	rec := app.postProduct(t, "Widget", "A widget", "9", widgetPNG(1024), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	select {
	case msg := <-msgs:
		var event domain.ProductCreatedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.Name != "Widget" || event.Price != 9 {
			t.Fatalf("unexpected event %+v", event)
		}
		if msg.Type != domain.ProductCreatedEventName {
			t.Fatalf("expected message type %q, got %q", domain.ProductCreatedEventName, msg.Type)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for product.created event")
	}
}

func TestIntegration_CreateProduct_RateLimited(t *testing.T) {
	app := newTestApp(t, "int_rate_limit", appOptions{
		rateLimiter: adaptredis.NewRateLimiter(redisClient),
		rateLimit:   2,
	})
	const client = "203.0.113.7:40000"

	for i := 0; i < 2; i++ {
		if rec := app.postProduct(t, "Widget", "A widget", "9", widgetPNG(1024), client); rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, rec.Code)
		}
	}

	rec := app.postProduct(t, "Widget", "A widget", "9", widgetPNG(1024), client)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if files := app.storedFiles(t); len(files) != 2 {
		t.Fatalf("expected only the accepted uploads on disk, found %v", files)
	}
}

func TestIntegration_UnknownRoute(t *testing.T) {
	app := newTestApp(t, "int_not_found", appOptions{})

	rec := app.get("/nowhere")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	if rec := app.get("/uploads/missing.png"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing upload, got %d", rec.Code)
	}
}

func TestIntegration_Health(t *testing.T) {
	app := newTestApp(t, "int_health", appOptions{})

	rec := app.get("/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func setupConsumer(t *testing.T, routingKey string) <-chan amqp.Delivery {
	t.Helper()

	conn, err := amqp.Dial(amqpEndpoint)
	if err != nil {
		t.Fatalf("consumer dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ch, err := conn.Channel()
	if err != nil {
		t.Fatalf("consumer channel: %v", err)
	}
	t.Cleanup(func() { ch.Close() })

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		t.Fatalf("queue declare: %v", err)
	}
	if err := ch.QueueBind(q.Name, routingKey, adaptrabbitmq.ExchangeFor(domain.ProductEntityName), false, nil); err != nil {
		t.Fatalf("queue bind: %v", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	return msgs
}
