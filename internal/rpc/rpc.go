package rpc

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
)

type RequestBody struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type ResponseBody struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error (%d): %s", e.Code, e.Message)
}

type Client struct {
	url        string
	httpClient *http.Client
	nextID     atomic.Uint64
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) CallRPC(ctx context.Context, method string, params interface{}) (*ResponseBody, error) {
	requestBody := RequestBody{
		Jsonrpc: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s request", method)
	}
	defer resp.Body.Close()

	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "%s gzip body", method)
		}
		defer reader.Close()
	default:
		reader = resp.Body
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", method)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, errors.Errorf("%s: http status %d: %s", method, resp.StatusCode, string(body))
	}

	var responseBody ResponseBody
	if err := json.Unmarshal(body, &responseBody); err != nil {
		return nil, errors.Wrapf(err, "decode %s response", method)
	}

	if responseBody.Error != nil {
		return nil, responseBody.Error
	}

	return &responseBody, nil
}

type RpcContext struct {
	Slot uint64 `json:"slot"`
}

type AccountInfo struct {
	Context RpcContext        `json:"context"`
	Value   *AccountInfoValue `json:"value"`
}

type AccountInfoValue struct {
	// kept raw so the encoding can be checked explicitly, see DecodeData
	Data       json.RawMessage `json:"data"`
	Owner      string          `json:"owner"`
	Lamports   uint64          `json:"lamports"`
	Executable bool            `json:"executable"`
	RentEpoch  uint64          `json:"rentEpoch"`
}

func (c *Client) GetAccountInfo(ctx context.Context, publicKey solana.PublicKey, dataSlice *rpc.DataSlice, commitment rpc.CommitmentType) (*AccountInfo, error) {
	params := map[string]interface{}{
		"encoding": "base64",
	}

	if commitment != "" {
		params["commitment"] = commitment
	}

	if dataSlice != nil {
		slice := map[string]interface{}{}
		if dataSlice.Offset != nil {
			slice["offset"] = *dataSlice.Offset
		}
		if dataSlice.Length != nil {
			slice["length"] = *dataSlice.Length
		}
		params["dataSlice"] = slice
	}

	reqParams := []interface{}{
		publicKey.String(),
		params,
	}

	response, err := c.CallRPC(ctx, "getAccountInfo", reqParams)
	if err != nil {
		return nil, err
	}

	var accountInfo AccountInfo
	if err := json.Unmarshal(response.Result, &accountInfo); err != nil {
		return nil, errors.Wrap(err, "decode getAccountInfo result")
	}

	return &accountInfo, nil
}

func (c *Client) GetBalance(ctx context.Context, publicKey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	params := map[string]interface{}{}
	if commitment != "" {
		params["commitment"] = commitment
	}

	response, err := c.CallRPC(ctx, "getBalance", []interface{}{publicKey.String(), params})
	if err != nil {
		return 0, err
	}

	var balance rpc.GetBalanceResult
	if err := json.Unmarshal(response.Result, &balance); err != nil {
		return 0, errors.Wrap(err, "decode getBalance result")
	}

	return balance.Value, nil
}

func (c *Client) GetSlot(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	var params interface{}
	if commitment != "" {
		params = []interface{}{map[string]interface{}{"commitment": commitment}}
	}

	response, err := c.CallRPC(ctx, "getSlot", params)
	if err != nil {
		return 0, err
	}

	var slot uint64
	if err := json.Unmarshal(response.Result, &slot); err != nil {
		return 0, errors.Wrap(err, "decode getSlot result")
	}

	return slot, nil
}
