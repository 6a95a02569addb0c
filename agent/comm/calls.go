package comm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// errorMessageMaxLength is the maximum length of the response body we will
// include into the generated error message
const errorMessageMaxLength = 80

var (
	// SendAndWaitReq is proxy function to route actual call to http or pseudo http in tests.
	SendAndWaitReq = sendAndWaitHTTPRequest

	c = &http.Client{}
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("not found")

// Request is a single HTTP call.
type Request struct {
	Method      string
	URL         string
	ContentType string
	Header      map[string]string
	Body        io.Reader
}

// Response is the body and headers of a successful call.
type Response struct {
	Data   []byte
	Header http.Header
}

// StatusError is returned for non 2xx answers.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return e.Status
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

func sendAndWaitHTTPRequest(ctx context.Context, req Request) (resp *Response, err error) {
	defer err2.Handle(&err, "call http %s", req.Method)

	URL := try.To1(url.Parse(req.URL))

	request := try.To1(http.NewRequestWithContext(ctx, req.Method, URL.String(), req.Body))
	request.Close = true // deferred response.Body.Close isn't always enough

	if req.ContentType != "" {
		request.Header.Set("Content-Type", req.ContentType)
	}
	for k, v := range req.Header {
		request.Header.Set(k, v)
	}

	glog.V(5).Infoln(req.Method, URL.String())
	response := try.To1(c.Do(request))

	defer func() {
		closeErr := response.Body.Close()
		if closeErr != nil {
			glog.Warningln("body.Close: ", closeErr)
		}
	}()

	data := try.To1(io.ReadAll(response.Body))
	try.To(checkHTTPStatus(response, data))

	return &Response{Data: data, Header: response.Header}, nil
}

// checkHTTPStatus checks the status code and gets the server message
func checkHTTPStatus(response *http.Response, data []byte) error {
	if response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	glog.V(1).Info("http code:", response.Status)
	e := &StatusError{Code: response.StatusCode, Status: response.Status}
	contentType := response.Header.Get("Content-type")
	if strings.HasPrefix(contentType, "text/plain") ||
		strings.HasPrefix(contentType, "application/json") {
		e.Message = string(data[0:min(errorMessageMaxLength, len(data))])
	}
	return e
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
