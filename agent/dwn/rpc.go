package dwn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bnonni/tool5/agent/comm"
	"github.com/bnonni/tool5/agent/utils"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	rpcVersion     = "2.0"
	rpcMethod      = "dwn.processMessage"
	requestHeader  = "dwn-request"
	responseHeader = "dwn-response"
)

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Target  string   `json:"target"`
	Message *Message `json:"message"`
}

type rpcResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      string     `json:"id"`
	Result  *rpcResult `json:"result,omitempty"`
	Error   *RPCError  `json:"error,omitempty"`
}

type rpcResult struct {
	Reply *Reply `json:"reply"`
}

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("dwn rpc error %d: %s", e.Code, e.Message)
}

type Status struct {
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

// StatusError is returned for non 2xx reply status.
type StatusError struct {
	Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dwn status %d: %s", e.Code, e.Detail)
}

// Reply is the DWN reply of a processed message.
type Reply struct {
	Status Status          `json:"status"`
	Record json.RawMessage `json:"record,omitempty"`

	// Data is the record data of a read, the body of the HTTP response.
	Data []byte `json:"-"`
}

// send posts the message to the endpoint as dwn.processMessage. Data is
// sent as the request body.
func send(ctx context.Context, endpoint, target string, m *Message, data []byte) (r *Reply, err error) {
	defer err2.Handle(&err, "dwn %s%s", m.Descriptor.Interface, m.Descriptor.Method)

	req := rpcRequest{
		JSONRPC: rpcVersion,
		ID:      utils.UUID(),
		Method:  rpcMethod,
		Params:  rpcParams{Target: target, Message: m},
	}
	reqJSON := try.To1(json.Marshal(req))
	glog.V(5).Infoln("dwn request:", string(reqJSON))

	resp := try.To1(comm.SendAndWaitReq(ctx, comm.Request{
		Method:      http.MethodPost,
		URL:         endpoint,
		ContentType: "application/octet-stream",
		Header:      map[string]string{requestHeader: string(reqJSON)},
		Body:        bytes.NewReader(data),
	}))

	body := resp.Data
	var rpcResp rpcResponse
	if h := resp.Header.Get(responseHeader); h != "" {
		try.To(json.Unmarshal([]byte(h), &rpcResp))
	} else {
		try.To(json.Unmarshal(body, &rpcResp))
		body = nil
	}
	if rpcResp.ID != req.ID {
		glog.Warningf("dwn response id %s, want %s", rpcResp.ID, req.ID)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	if rpcResp.Result == nil || rpcResp.Result.Reply == nil {
		return nil, fmt.Errorf("empty dwn reply")
	}
	r = rpcResp.Result.Reply
	if r.Status.Code < 200 || r.Status.Code >= 300 {
		return nil, &StatusError{r.Status}
	}
	r.Data = body
	return r, nil
}
