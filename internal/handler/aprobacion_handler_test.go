package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"compras-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// stubApprovalService returns canned results so the tests exercise only the
// HTTP mapping: routing, status codes and the response envelope.
type stubApprovalService struct {
	view     service.ApprovalOrderView
	issued   service.TokenIssueResponse
	identity service.ApproverIdentity
	result   service.ResolutionResponse
	err      error
}

func (s *stubApprovalService) GetOrderByToken(context.Context, string) (service.ApprovalOrderView, error) {
	return s.view, s.err
}

func (s *stubApprovalService) GenerateToken(context.Context, string, service.GenerateTokenRequest) (service.TokenIssueResponse, error) {
	return s.issued, s.err
}

func (s *stubApprovalService) ValidatePIN(context.Context, service.ValidatePINRequest) (service.ApproverIdentity, error) {
	return s.identity, s.err
}

func (s *stubApprovalService) Approve(context.Context, string, service.ApproveRequest, string) (service.ResolutionResponse, error) {
	return s.result, s.err
}

func (s *stubApprovalService) Reject(context.Context, string, service.RejectRequest, string) (service.ResolutionResponse, error) {
	return s.result, s.err
}

func newApprovalRouter(svc service.ApprovalService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	router := gin.New()
	NewAprobacionHandler(svc, log).RegisterRoutes(router.Group(""))
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const sampleToken = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestGetOrderEndpoint(t *testing.T) {
	t.Run("returns the order view", func(t *testing.T) {
		stub := &stubApprovalService{view: service.ApprovalOrderView{
			NumeroOrden: "OC-2025-03-001",
			Estado:      "En Revisión",
			Total:       decimal.NewFromInt(1180),
		}}
		rec := doJSON(newApprovalRouter(stub), http.MethodGet, "/api/aprobacion/"+sampleToken, "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeEnvelope(t, rec)
		require.Equal(t, true, body["success"])
		data := body["data"].(map[string]interface{})
		require.Equal(t, "OC-2025-03-001", data["numero_orden"])
	})

	t.Run("unknown token maps to 404", func(t *testing.T) {
		stub := &stubApprovalService{err: &service.FlowError{Code: service.CodeTokenInvalid, Message: "El enlace de aprobación no es válido"}}
		rec := doJSON(newApprovalRouter(stub), http.MethodGet, "/api/aprobacion/"+sampleToken, "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeEnvelope(t, rec)
		require.Equal(t, false, body["success"])
		require.Equal(t, service.CodeTokenInvalid, body["error"])
	})

	t.Run("used token maps to 400 with its tag", func(t *testing.T) {
		stub := &stubApprovalService{err: &service.FlowError{Code: service.CodeTokenUsed, Message: "Este enlace ya fue utilizado"}}
		rec := doJSON(newApprovalRouter(stub), http.MethodGet, "/api/aprobacion/"+sampleToken, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, service.CodeTokenUsed, decodeEnvelope(t, rec)["error"])
	})

	t.Run("infrastructure errors surface as SERVER_ERROR only", func(t *testing.T) {
		stub := &stubApprovalService{err: context.DeadlineExceeded}
		rec := doJSON(newApprovalRouter(stub), http.MethodGet, "/api/aprobacion/"+sampleToken, "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decodeEnvelope(t, rec)
		require.Equal(t, service.CodeServerError, body["error"])
		require.NotContains(t, rec.Body.String(), "deadline")
	})
}

func TestApproveEndpoint(t *testing.T) {
	t.Run("missing PIN is rejected before the service runs", func(t *testing.T) {
		stub := &stubApprovalService{}
		rec := doJSON(newApprovalRouter(stub), http.MethodPost, "/api/aprobacion/"+sampleToken+"/aprobar", `{"nombre":"Ana"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, service.CodePINInvalid, decodeEnvelope(t, rec)["error"])
	})

	t.Run("success returns the resolution", func(t *testing.T) {
		stub := &stubApprovalService{result: service.ResolutionResponse{
			NumeroOrden: "OC-2025-03-001",
			Estado:      "Aprobada",
			ResueltoPor: "María González",
		}}
		rec := doJSON(newApprovalRouter(stub), http.MethodPost, "/api/aprobacion/"+sampleToken+"/aprobar", `{"pin":"4321"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
		require.Equal(t, "Aprobada", data["estado"])
	})
}

func TestRejectEndpoint(t *testing.T) {
	stub := &stubApprovalService{result: service.ResolutionResponse{Estado: "Cancelada"}}
	rec := doJSON(newApprovalRouter(stub), http.MethodPost, "/api/aprobacion/"+sampleToken+"/rechazar", `{"pin":"4321","motivo":"tarde"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	require.Equal(t, "Cancelada", data["estado"])
}

func TestGenerateTokenEndpoint(t *testing.T) {
	orderID := uuid.New().String()

	t.Run("requires baseUrl", func(t *testing.T) {
		stub := &stubApprovalService{}
		rec := doJSON(newApprovalRouter(stub), http.MethodPost, "/api/aprobacion/generar-token/"+orderID, `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("live token conflict carries the remaining minutes", func(t *testing.T) {
		stub := &stubApprovalService{err: &service.FlowError{
			Code:             service.CodeTokenActive,
			Message:          "Ya existe un enlace de aprobación vigente para esta orden",
			RemainingMinutes: 95,
		}}
		rec := doJSON(newApprovalRouter(stub), http.MethodPost, "/api/aprobacion/generar-token/"+orderID, `{"baseUrl":"https://x.test"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeEnvelope(t, rec)
		require.Equal(t, service.CodeTokenActive, body["error"])
		extra := body["extra"].(map[string]interface{})
		require.Equal(t, float64(95), extra["minutos_restantes"])
	})

	t.Run("success returns token and links", func(t *testing.T) {
		stub := &stubApprovalService{issued: service.TokenIssueResponse{
			Token:         sampleToken,
			URLAprobacion: "https://x.test/aprobacion/" + sampleToken,
		}}
		rec := doJSON(newApprovalRouter(stub), http.MethodPost, "/api/aprobacion/generar-token/"+orderID, `{"baseUrl":"https://x.test"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
		require.Equal(t, sampleToken, data["token"])
	})
}

func TestValidatePINEndpoint(t *testing.T) {
	t.Run("identity on success", func(t *testing.T) {
		stub := &stubApprovalService{identity: service.ApproverIdentity{Nombre: "María González", Cargo: "Gerente de Compras"}}
		rec := doJSON(newApprovalRouter(stub), http.MethodPost, "/api/aprobacion/validar-pin", `{"token":"`+sampleToken+`","pin":"4321"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
		require.Equal(t, "María González", data["nombre"])
	})

	t.Run("wrong PIN and unknown approver use distinct tags", func(t *testing.T) {
		wrongPIN := &stubApprovalService{err: &service.FlowError{Code: service.CodePINInvalid, Message: "PIN incorrecto"}}
		rec := doJSON(newApprovalRouter(wrongPIN), http.MethodPost, "/api/aprobacion/validar-pin", `{"token":"`+sampleToken+`","pin":"0000"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, service.CodePINInvalid, decodeEnvelope(t, rec)["error"])

		noApprover := &stubApprovalService{err: &service.FlowError{Code: service.CodeApproverNotFound, Message: "La orden no tiene un aprobador asignado"}}
		rec = doJSON(newApprovalRouter(noApprover), http.MethodPost, "/api/aprobacion/validar-pin", `{"token":"`+sampleToken+`","pin":"0000"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
