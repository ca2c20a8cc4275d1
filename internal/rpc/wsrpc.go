package rpc

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/iqbalbaharum/market-account-poller/internal/generators"
	"github.com/iqbalbaharum/market-account-poller/internal/logger"
	"github.com/pkg/errors"
)

type AccountNotification struct {
	Subscription uint64
	Slot         uint64
}

type WsRpc struct {
	wsClient *generators.WSClient
	log      *logger.Logger
}

func NewWsRpc(ctx context.Context, url string, log *logger.Logger) (*WsRpc, error) {
	wsClient, err := generators.NewWSClient(ctx, url, "")
	if err != nil {
		return nil, err
	}

	return &WsRpc{
		wsClient: wsClient,
		log:      log.Named("wsrpc"),
	}, nil
}

type wsMessage struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	Params *struct {
		Subscription uint64 `json:"subscription"`
		Result       struct {
			Context RpcContext `json:"context"`
		} `json:"result"`
	} `json:"params"`
}

// SubscribeToAccount sends accountSubscribe and blocks, forwarding every
// accountNotification to notifications until the stream ends. notifications is
// closed on return.
func (w *WsRpc) SubscribeToAccount(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType, notifications chan<- AccountNotification) error {
	defer close(notifications)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := map[string]interface{}{"encoding": "base64"}
	if commitment != "" {
		opts["commitment"] = commitment
	}

	subscriptionRequest := RequestBody{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "accountSubscribe",
		Params:  []interface{}{account.String(), opts},
	}

	if err := w.wsClient.SendJSON(ctx, subscriptionRequest); err != nil {
		return errors.Wrap(err, "send accountSubscribe")
	}

	messages := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		readErr <- w.wsClient.ReadMessages(ctx, messages)
	}()

	for message := range messages {
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			w.log.Warn("failed to unmarshal message", logger.Error(err))
			continue
		}

		switch {
		case msg.Error != nil:
			return errors.Wrap(msg.Error, "accountSubscribe")
		case msg.Method == "accountNotification" && msg.Params != nil:
			notification := AccountNotification{
				Subscription: msg.Params.Subscription,
				Slot:         msg.Params.Result.Context.Slot,
			}
			select {
			case notifications <- notification:
			case <-ctx.Done():
				return ctx.Err()
			}
		case msg.ID == subscriptionRequest.ID && len(msg.Result) > 0:
			w.log.Info("account subscription confirmed",
				logger.Stringer("account", account),
				logger.String("subscription", string(msg.Result)))
		}
	}

	return <-readErr
}

func (w *WsRpc) Close() error {
	return w.wsClient.Close()
}
