package stockApi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/stock_risk_client/config"
	"github.com/KotFed0t/stock_risk_client/internal/externalApi"
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/model/stockApiModel"
	"github.com/KotFed0t/stock_risk_client/utils"
	"github.com/go-resty/resty/v2"
)

const (
	logoutUrl      = "/auth/logout"
	tokenUrl       = "/auth/token"
	searchUrl      = "/stock-data/search"
	analyzeUrl     = "/stock-data/"
	usersUrl       = "/users/"
	userByEmailUrl = "/users/by-email/{email}"
	userUrl        = "/users/{id}"
)

type StockApi struct {
	client      *resty.Client
	tokenSource func() string
}

func New(cfg *config.Config) *StockApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.StockApi.Url).
		SetHeader("Accept", "application/json")

	a := &StockApi{client: client}
	client.OnBeforeRequest(a.authorize)
	return a
}

// SetTokenSource installs the provider of the current bearer token.
// It is read on every request, so a logout or refresh is seen immediately.
func (a *StockApi) SetTokenSource(src func() string) {
	a.tokenSource = src
}

func (a *StockApi) authorize(_ *resty.Client, r *resty.Request) error {
	if r.Token != "" || a.tokenSource == nil {
		return nil
	}
	if token := a.tokenSource(); token != "" {
		r.SetAuthToken(token)
	}
	return nil
}

func (a *StockApi) Login(ctx context.Context, username, password string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockApi.Login"

	slog.Debug("start StockApi.Login request", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))

	resp, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": username,
			"password": password,
		}).
		Post(tokenUrl)
	if err := checkResponse(resp, err); err != nil {
		slog.Error("StockApi.Login failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	tokenResp := stockApiModel.TokenResponse{}
	err = json.Unmarshal(resp.Body(), &tokenResp)
	if err != nil || tokenResp.AccessToken == "" {
		slog.Error("can't unmarshall response into stockApiModel.TokenResponse", slog.String("rqID", rqID), slog.String("op", op))
		return "", fmt.Errorf("%w: no access token", externalApi.ErrUnexpectedBody)
	}

	slog.Debug("StockApi.Login request complete", slog.String("rqID", rqID), slog.String("op", op))

	return tokenResp.AccessToken, nil
}

func (a *StockApi) Register(ctx context.Context, reg model.Registration) (model.Profile, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockApi.Register"

	slog.Debug("start StockApi.Register request", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", reg.Email))

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(stockApiModel.RegisterRequest{
			Name:            reg.Name,
			Surname:         reg.Surname,
			Email:           reg.Email,
			Password:        reg.Password,
			ConfirmPassword: reg.ConfirmPassword,
		}).
		Post(usersUrl)
	if err := checkResponse(resp, err); err != nil {
		slog.Error("StockApi.Register failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profile{}, err
	}

	record := stockApiModel.UserRecord{}
	if err = json.Unmarshal(resp.Body(), &record); err != nil {
		slog.Error("can't unmarshall response into stockApiModel.UserRecord", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profile{}, fmt.Errorf("%w: %w", externalApi.ErrUnexpectedBody, err)
	}

	slog.Debug("StockApi.Register request complete", slog.String("rqID", rqID), slog.String("op", op))

	return convertUserRecord(record), nil
}

// Logout always sends the given token, even if the token source is already cleared.
func (a *StockApi) Logout(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockApi.Logout"

	slog.Debug("start StockApi.Logout request", slog.String("rqID", rqID), slog.String("op", op))

	rq := a.client.R().SetContext(ctx)
	if token != "" {
		rq.SetAuthToken(token)
	}

	resp, err := rq.Post(logoutUrl)
	if err := checkResponse(resp, err); err != nil {
		slog.Error("StockApi.Logout failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("StockApi.Logout request complete", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (a *StockApi) Search(ctx context.Context, symbol string) (model.SearchResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockApi.Search"

	slog.Debug("start StockApi.Search request", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get(searchUrl)
	if err := checkResponse(resp, err); err != nil {
		slog.Error("StockApi.Search failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.SearchResult{}, err
	}

	res, err := parseSearchBody(resp.Body())
	if err != nil {
		slog.Error("can't parse search response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.SearchResult{}, err
	}

	slog.Debug("StockApi.Search request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Int("matches", len(res.Matches)))

	return res, nil
}

func (a *StockApi) Analyze(ctx context.Context, rq model.AnalysisRequest) (model.AnalysisResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockApi.Analyze"

	slog.Debug("start StockApi.Analyze request", slog.String("rqID", rqID), slog.String("op", op), slog.Any("request", rq))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(rq).
		Post(analyzeUrl)
	if err := checkResponse(resp, err); err != nil {
		slog.Error("StockApi.Analyze failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.AnalysisResult{}, err
	}

	res, err := parseAnalysisBody(resp.Body())
	if err != nil {
		slog.Error("can't parse analysis response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.AnalysisResult{}, err
	}

	slog.Debug("StockApi.Analyze request complete", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("hasPlot", res.HasPlot()), slog.Bool("hasVar", res.HasVar()))

	return res, nil
}

func (a *StockApi) GetUserByEmail(ctx context.Context, email string) (model.Profile, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockApi.GetUserByEmail"

	slog.Debug("start StockApi.GetUserByEmail request", slog.String("rqID", rqID), slog.String("op", op), slog.String("email", email))

	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("email", email).
		Get(userByEmailUrl)
	if err := checkResponse(resp, err); err != nil {
		slog.Error("StockApi.GetUserByEmail failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profile{}, err
	}

	record := stockApiModel.UserRecord{}
	if err = json.Unmarshal(resp.Body(), &record); err != nil {
		slog.Error("can't unmarshall response into stockApiModel.UserRecord", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Profile{}, fmt.Errorf("%w: %w", externalApi.ErrUnexpectedBody, err)
	}

	slog.Debug("StockApi.GetUserByEmail request complete", slog.String("rqID", rqID), slog.String("op", op))

	return convertUserRecord(record), nil
}

// UpdateUser sends the sparse patch and returns the token re-issued by the service.
func (a *StockApi) UpdateUser(ctx context.Context, userID string, edit model.ProfileEdit) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "StockApi.UpdateUser"

	slog.Debug("start StockApi.UpdateUser request", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))

	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		SetBody(stockApiModel.UpdateUserRequest{
			Name:    edit.Name,
			Surname: edit.Surname,
			Email:   edit.Username,
		}).
		Put(userUrl)
	if err := checkResponse(resp, err); err != nil {
		slog.Error("StockApi.UpdateUser failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	updated := stockApiModel.UpdateUserResponse{}
	err = json.Unmarshal(resp.Body(), &updated)
	if err != nil || updated.AccessToken == "" {
		slog.Error("can't unmarshall response into stockApiModel.UpdateUserResponse", slog.String("rqID", rqID), slog.String("op", op))
		return "", fmt.Errorf("%w: no access token", externalApi.ErrUnexpectedBody)
	}

	slog.Debug("StockApi.UpdateUser request complete", slog.String("rqID", rqID), slog.String("op", op))

	return updated.AccessToken, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return &externalApi.HttpError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}

func parseSearchBody(body []byte) (model.SearchResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return model.SearchResult{}, fmt.Errorf("%w: empty search body", externalApi.ErrUnexpectedBody)
	}

	if trimmed[0] == '[' {
		matches := make([]model.CompanyMatch, 0)
		if err := json.Unmarshal(trimmed, &matches); err != nil {
			return model.SearchResult{}, fmt.Errorf("%w: %w", externalApi.ErrUnexpectedBody, err)
		}
		return model.SearchResult{Matches: matches}, nil
	}

	msg := stockApiModel.MessageResponse{}
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return model.SearchResult{}, fmt.Errorf("%w: %w", externalApi.ErrUnexpectedBody, err)
	}
	if msg.Message == "" {
		return model.SearchResult{}, fmt.Errorf("%w: search body has neither matches nor message", externalApi.ErrUnexpectedBody)
	}
	return model.SearchResult{NotFound: msg.Message}, nil
}

// parseAnalysisBody undoes the double encoding: the body is a JSON string whose
// content is the JSON object {plot, var}. A bare non-object string is a plot.
func parseAnalysisBody(body []byte) (model.AnalysisResult, error) {
	var inner string
	if err := json.Unmarshal(body, &inner); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: body is not a JSON string: %w", externalApi.ErrUnexpectedBody, err)
	}

	trimmed := bytes.TrimSpace([]byte(inner))
	if len(trimmed) == 0 {
		return model.AnalysisResult{}, nil
	}
	if trimmed[0] != '{' {
		return model.AnalysisResult{Plot: string(trimmed)}, nil
	}

	decoded := stockApiModel.AnalysisBody{}
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: inner body: %w", externalApi.ErrUnexpectedBody, err)
	}

	res := model.AnalysisResult{VarValue: decoded.Var}
	if decoded.Plot != nil {
		res.Plot = *decoded.Plot
	}
	return res, nil
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func convertUserRecord(r stockApiModel.UserRecord) model.Profile {
	return model.Profile{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Surname:     r.Surname,
		IsActive:    r.IsActive,
		IsSuperuser: r.IsSuperuser,
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}
