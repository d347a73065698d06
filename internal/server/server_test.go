package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/commerce"
	errx "github.com/medusa-chatbot/server/internal/core/error"
	"github.com/medusa-chatbot/server/internal/rag"
)

type fakeEngine struct {
	lastInput model.QueryInput
	out       *model.QueryOutput
	err       error
	cleared   []string
}

func (f *fakeEngine) ProcessQuery(_ context.Context, in model.QueryInput) (*model.QueryOutput, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	out := *f.out
	out.ConversationID = in.ConversationID
	return &out, nil
}

func (f *fakeEngine) ClearConversation(_ context.Context, conversationID string) error {
	f.cleared = append(f.cleared, conversationID)
	return nil
}

type fakeStore struct {
	orders []commerce.Order
	err    error
}

func (f *fakeStore) GetCart(_ context.Context, _ string, _ commerce.Credentials) (*commerce.Cart, error) {
	return &commerce.Cart{CartID: "cart_1"}, f.err
}

func (f *fakeStore) AddToCart(_ context.Context, _, _ string, _ int, _ commerce.Credentials) (*commerce.Cart, error) {
	return &commerce.Cart{CartID: "cart_1", ItemsCount: 1}, f.err
}

func (f *fakeStore) ListOrders(_ context.Context, _ commerce.Credentials, _, _ int) ([]commerce.Order, error) {
	return f.orders, f.err
}

func (f *fakeStore) GetOrder(_ context.Context, _ commerce.Credentials, displayID int) (*commerce.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &commerce.Order{DisplayID: displayID}, nil
}

func (f *fakeStore) GetCustomer(_ context.Context, _ commerce.Credentials) (*commerce.Customer, error) {
	return &commerce.Customer{ID: "cus_1", FirstName: "Ada"}, f.err
}

func (f *fakeStore) GetProduct(_ context.Context, productID string, _ commerce.Credentials) (*commerce.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &commerce.Product{ID: productID}, nil
}

type fakeKnowledgeAdmin struct {
	ingested int
	dropped  bool
}

func (f *fakeKnowledgeAdmin) Ingest(_ context.Context, pairs []rag.QnAPair) (int, error) {
	f.ingested += len(pairs)
	return len(pairs), nil
}

func (f *fakeKnowledgeAdmin) Info(_ context.Context) (*rag.CollectionInfo, error) {
	return &rag.CollectionInfo{Collection: "medusa_qna", PointsCount: 4, Status: "green"}, nil
}

func (f *fakeKnowledgeAdmin) DeleteAll(_ context.Context) error {
	f.dropped = true
	return nil
}

func newTestServer(engine *fakeEngine) (*Server, *fakeStore, *fakeKnowledgeAdmin) {
	store := &fakeStore{}
	knowledge := &fakeKnowledgeAdmin{}
	return New(engine, store, knowledge), store, knowledge
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(&fakeEngine{out: &model.QueryOutput{}})
	rec := doJSON(t, srv.Router(), http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestChatGeneratesThreadID(t *testing.T) {
	engine := &fakeEngine{out: &model.QueryOutput{Answer: "hi there", ToolsUsed: []string{}}}
	srv, _, _ := newTestServer(engine)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/chat",
		`{"query":"hello","auth_token":"tok","x_publishable_api_key":"pk"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Answer   string `json:"ai_response"`
		ThreadID string `json:"thread_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Answer != "hi there" {
		t.Errorf("ai_response = %q", out.Answer)
	}
	if out.ThreadID == "" {
		t.Error("thread_id should be generated when absent")
	}
	if engine.lastInput.ConversationID != out.ThreadID {
		t.Errorf("engine saw %q, response says %q", engine.lastInput.ConversationID, out.ThreadID)
	}
}

func TestChatKeepsProvidedThreadID(t *testing.T) {
	engine := &fakeEngine{out: &model.QueryOutput{Answer: "ok"}}
	srv, _, _ := newTestServer(engine)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/chat",
		`{"query":"hello","auth_token":"tok","x_publishable_api_key":"pk","thread_id":"t-42","cart_id":"cart_9"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if engine.lastInput.ConversationID != "t-42" {
		t.Errorf("ConversationID = %q, want t-42", engine.lastInput.ConversationID)
	}
	if engine.lastInput.CartID != "cart_9" {
		t.Errorf("CartID = %q, want cart_9", engine.lastInput.CartID)
	}
}

func TestChatValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"auth_token":"tok","x_publishable_api_key":"pk"}`},
		{"blank query", `{"query":"   ","auth_token":"tok","x_publishable_api_key":"pk"}`},
		{"missing credentials", `{"query":"hello"}`},
		{"malformed body", `{"query":`},
	}

	srv, _, _ := newTestServer(&fakeEngine{out: &model.QueryOutput{}})
	router := srv.Router()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/chat", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChatEngineFailure(t *testing.T) {
	engine := &fakeEngine{err: errx.Model(errors.New("model exploded"))}
	srv, _, _ := newTestServer(engine)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/chat",
		`{"query":"hello","auth_token":"tok","x_publishable_api_key":"pk"}`)

	if rec.Code < 500 {
		t.Fatalf("status = %d, want a 5xx", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "model exploded") {
		t.Errorf("internal error detail leaked: %s", rec.Body.String())
	}
}

func TestClearConversation(t *testing.T) {
	engine := &fakeEngine{out: &model.QueryOutput{}}
	srv, _, _ := newTestServer(engine)

	rec := doJSON(t, srv.Router(), http.MethodDelete, "/chat/clear/t-42", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(engine.cleared) != 1 || engine.cleared[0] != "t-42" {
		t.Errorf("cleared = %v, want [t-42]", engine.cleared)
	}
	if !strings.Contains(rec.Body.String(), "Conversation state cleared for thread t-42") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDirectOrderEndpoints(t *testing.T) {
	srv, store, _ := newTestServer(&fakeEngine{out: &model.QueryOutput{}})
	store.orders = []commerce.Order{{DisplayID: 12}}
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/orders?auth_token=tok&x_publishable_api_key=pk", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Orders []commerce.Order `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Orders) != 1 || list.Orders[0].DisplayID != 12 {
		t.Errorf("orders = %+v", list.Orders)
	}

	rec = doJSON(t, router, http.MethodGet, "/orders/12?auth_token=tok&x_publishable_api_key=pk", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/orders/notanumber", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric display_id status = %d, want 400", rec.Code)
	}
}

func TestDirectCartEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(&fakeEngine{out: &model.QueryOutput{}})
	router := srv.Router()

	rec := doJSON(t, router, http.MethodGet, "/cart", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing cart_id status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/cart?cart_id=cart_1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get cart status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/cart/cart_1/add", `{"variant_id":"var_1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Item added successfully") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/cart/cart_1/add", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing variant_id status = %d, want 400", rec.Code)
	}
}

func TestDirectFailureMapsDomainError(t *testing.T) {
	srv, store, _ := newTestServer(&fakeEngine{out: &model.QueryOutput{}})
	store.err = errx.Upstream("commerce", errors.New("connection refused"))

	rec := doJSON(t, srv.Router(), http.MethodGet, "/customer/me", "")
	if rec.Code < 500 {
		t.Fatalf("status = %d, want a 5xx", rec.Code)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Detail == "" {
		t.Error("error responses carry a detail message")
	}
}

func TestKnowledgeEndpoints(t *testing.T) {
	srv, _, knowledge := newTestServer(&fakeEngine{out: &model.QueryOutput{}})
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/ingest",
		`{"qna_pairs":[{"question":"Shipping?","answer":"3-5 days."},{"question":"Returns?","answer":"30 days."}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if knowledge.ingested != 2 {
		t.Errorf("ingested = %d, want 2", knowledge.ingested)
	}
	if !strings.Contains(rec.Body.String(), "Successfully ingested 2 Q&A pairs") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/ingest", `{"qna_pairs":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty ingest status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/knowledge-base/info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("info status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "medusa_qna") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/knowledge-base", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if !knowledge.dropped {
		t.Error("DeleteAll was not called")
	}
}
