package twitch_client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"twitch_poll_client/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const twitchApiSchemeHost = "https://api.twitch.tv"

var (
	ErrRequestTimeout      = errors.New("twitch request timed out")
	ErrUndecodableResponse = errors.New("undecodable twitch response")
	ErrResponseHandler     = errors.New("twitch response handler failed")
	ErrEmptyData           = errors.New("empty data in twitch response")
)

// Credentials is read once per Send, before the request leaves.
type Credentials interface {
	ClientID() string
	AccessToken() string
}

// ResponseHandler receives the outcome of a call. At most one of the two
// functions is invoked per call. OnError receives either a *models.APIError or
// a transport failure.
type ResponseHandler struct {
	OnSuccess func(body []byte) error
	OnError   func(err error)
}

type TwitchClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewTwitchClient(httpClient *http.Client, baseURL string) *TwitchClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: time.Second * 10,
		}
	}
	if baseURL == "" {
		baseURL = twitchApiSchemeHost
	}

	return &TwitchClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (twc *TwitchClient) BaseURL() string {
	return twc.baseURL
}

// Send issues the request off the caller's goroutine and returns immediately.
// There are no retries.
func (twc *TwitchClient) Send(ctx context.Context, creds Credentials, r Request, h ResponseHandler) *Call {
	call := newCall()

	clientID, token := creds.ClientID(), creds.AccessToken()

	go twc.do(ctx, clientID, token, r, h, call)

	return call
}

func (twc *TwitchClient) do(ctx context.Context, clientID, token string, r Request, h ResponseHandler, call *Call) {
	body, err := twc.roundTrip(ctx, clientID, token, r)
	if err != nil {
		logrus.Debugf("twitch %s %s failed: %v", r.Method, r.URL, err)
		runErrorHandler(h, err)
		call.complete(nil, err)
		return
	}

	if err := runSuccessHandler(h, body); err != nil {
		logrus.Errorf("twitch %s %s: response handler failed: %v, body: %s", r.Method, r.URL, err, body)
		call.complete(body, errors.Wrap(ErrResponseHandler, err.Error()))
		return
	}

	call.complete(body, nil)
}

func runSuccessHandler(h ResponseHandler, body []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("panic: %v", rec)
		}
	}()

	if h.OnSuccess == nil {
		return nil
	}

	return h.OnSuccess(body)
}

func runErrorHandler(h ResponseHandler, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("twitch error handler panicked: %v, handled error: %v", rec, err)
		}
	}()

	if h.OnError != nil {
		h.OnError(err)
	}
}

func (twc *TwitchClient) roundTrip(ctx context.Context, clientID, token string, r Request) ([]byte, error) {
	target := r.URL
	if strings.HasPrefix(target, "/") {
		target = twc.baseURL + target
	}
	target = BuildURL(target, r.Query)

	var reqBody io.Reader
	if r.Body != nil {
		encoded, err := jsoniter.Marshal(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "Marshal")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "NewRequestWithContext")
	}

	if token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	req.Header.Add("Client-Id", clientID)
	if r.Body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	logrus.Debugf("twitch %s %s", r.Method, target)

	resp, err := twc.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Wrap(ErrRequestTimeout, err.Error())
		}
		return nil, errors.Wrap(err, "Do")
	}

	defer resp.Body.Close()

	readedResp, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Wrap(ErrRequestTimeout, err.Error())
		}
		return nil, errors.Wrap(err, "ReadAll")
	}

	if len(bytes.TrimSpace(readedResp)) == 0 {
		return nil, nil
	}

	if !jsoniter.Valid(readedResp) {
		return nil, errors.Wrapf(ErrUndecodableResponse, "status code %d", resp.StatusCode)
	}

	if jsoniter.Get(readedResp, "error").ValueType() != jsoniter.InvalidValue {
		apiErr := &models.APIError{}
		if err := jsoniter.Unmarshal(readedResp, apiErr); err != nil {
			apiErr.ErrorName = jsoniter.Get(readedResp, "error").ToString()
		}
		apiErr.HTTPStatus = resp.StatusCode
		apiErr.Payload = readedResp
		return nil, apiErr
	}

	return readedResp, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
