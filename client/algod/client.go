// Package algod is a thin client for the node REST API: just enough surface
// for composing, simulating, and submitting transaction groups.
package algod

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/algorandfoundation/algokit-go/encoding/msgpack"
	"github.com/algorandfoundation/algokit-go/loggers"
	"github.com/algorandfoundation/algokit-go/models"
	"github.com/algorandfoundation/algokit-go/types"
	"github.com/algorandfoundation/algokit-go/version"
)

// tokenHeader carries the API token on every request.
const tokenHeader = "X-Algo-API-Token"

// FetchError reports a failed read request.
type FetchError struct {
	Status int
	Body   string
}

func (e FetchError) Error() string {
	return fmt.Sprintf("algod request failed: status %d: %s", e.Status, e.Body)
}

// SubmitError reports a rejected transaction submission.
type SubmitError struct {
	Status int
	Body   string
}

func (e SubmitError) Error() string {
	return fmt.Sprintf("algod rejected transactions: status %d: %s", e.Status, e.Body)
}

// Client talks to one algod node.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *log.Logger
}

// NewClient creates a client for the node at baseURL. A nil logger falls
// back to a fresh logrus logger.
func NewClient(baseURL, token string, logger *log.Logger) *Client {
	if logger == nil {
		logger = loggers.MakeLogger(log.InfoLevel, os.Stderr)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: http.DefaultClient,
		log:        logger,
	}
}

// SetHTTPClient overrides the http client used for requests.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("User-Agent", version.UserAgent())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("algod request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading algod response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(log.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warning("algod request failed")
		if method == http.MethodPost {
			return nil, SubmitError{Status: resp.StatusCode, Body: string(respBody)}
		}
		return nil, FetchError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// transactionParamsResponse is the JSON body of /v2/transactions/params.
type transactionParamsResponse struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	ConsensusVersion string `codec:"consensus-version"`
	Fee              uint64 `codec:"fee"`
	GenesisHash      []byte `codec:"genesis-hash"`
	GenesisID        string `codec:"genesis-id"`
	LastRound        uint64 `codec:"last-round"`
	MinFee           uint64 `codec:"min-fee"`
}

// SuggestedParams fetches the node's current transaction parameters.
func (c *Client) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	body, err := c.do(ctx, http.MethodGet, "/v2/transactions/params", nil, "", nil)
	if err != nil {
		return types.SuggestedParams{}, err
	}

	var resp transactionParamsResponse
	if err := msgpack.LenientDecodeJSON(body, &resp); err != nil {
		return types.SuggestedParams{}, fmt.Errorf("decoding suggested params: %w", err)
	}
	if len(resp.GenesisHash) != types.DigestByteLength {
		return types.SuggestedParams{}, fmt.Errorf("unexpected genesis hash length %d", len(resp.GenesisHash))
	}

	var gh types.Digest
	copy(gh[:], resp.GenesisHash)
	return types.SuggestedParams{
		FeePerByte:       types.MicroAlgos(resp.Fee),
		MinFee:           types.MicroAlgos(resp.MinFee),
		FirstValid:       types.Round(resp.LastRound),
		LastValid:        types.Round(resp.LastRound + uint64(types.MaxValidityWindow)),
		GenesisID:        resp.GenesisID,
		GenesisHash:      gh,
		ConsensusVersion: resp.ConsensusVersion,
	}, nil
}

// submitResponse is the JSON body of a successful raw submission.
type submitResponse struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	TxID string `codec:"txId"`
}

// SubmitRaw broadcasts concatenated signed transaction encodings and returns
// the txid of the first transaction in the group.
func (c *Client) SubmitRaw(ctx context.Context, stxns []byte) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/v2/transactions", nil, "application/x-binary", stxns)
	if err != nil {
		return "", err
	}

	var resp submitResponse
	if err := msgpack.LenientDecodeJSON(body, &resp); err != nil {
		return "", fmt.Errorf("decoding submit response: %w", err)
	}
	c.log.WithField("txid", resp.TxID).Debug("submitted transaction group")
	return resp.TxID, nil
}

// SimulateRaw evaluates a transaction group on the node without committing
// it. Request and response travel as canonical msgpack.
func (c *Client) SimulateRaw(ctx context.Context, request models.SimulateRequest) (models.SimulateResponse, error) {
	query := url.Values{"format": []string{"msgpack"}}
	body, err := c.do(ctx, http.MethodPost, "/v2/transactions/simulate", query, "application/msgpack", msgpack.Encode(&request))
	if err != nil {
		return models.SimulateResponse{}, err
	}

	var resp models.SimulateResponse
	if err := msgpack.LenientDecode(body, &resp); err != nil {
		return models.SimulateResponse{}, fmt.Errorf("decoding simulate response: %w", err)
	}
	return resp, nil
}

// PendingInfo fetches the pending status of a submitted transaction.
func (c *Client) PendingInfo(ctx context.Context, txid string) (models.PendingTransactionResponse, error) {
	query := url.Values{"format": []string{"msgpack"}}
	body, err := c.do(ctx, http.MethodGet, "/v2/transactions/pending/"+txid, query, "", nil)
	if err != nil {
		return models.PendingTransactionResponse{}, err
	}

	var resp models.PendingTransactionResponse
	if err := msgpack.LenientDecode(body, &resp); err != nil {
		return models.PendingTransactionResponse{}, fmt.Errorf("decoding pending info: %w", err)
	}
	return resp, nil
}
