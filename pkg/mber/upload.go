package mber

import (
	"encoding/base64"
	"io"
	"os"

	"github.com/mber/mber-go/pkg/envelope"
	"github.com/mber/mber-go/pkg/transport"
)

type uploadRequest struct {
	Name          string   `json:"name"`
	Size          int64    `json:"size"`
	DirectoryID   string   `json:"directoryId"`
	AccessToken   string   `json:"access_token"`
	TransactionID string   `json:"transactionId"`
	Tags          []string `json:"tags"`
}

type documentCreateRequest struct {
	Name          string   `json:"name"`
	Content       string   `json:"content"`
	DirectoryID   string   `json:"directoryId"`
	AccessToken   string   `json:"access_token"`
	TransactionID string   `json:"transactionId"`
	Tags          []string `json:"tags"`
}

// Upload stores the file at path as a document named name in the given
// directory. The transfer is two-phase: metadata is posted to request a
// transfer slot, then the file's bytes are streamed to the URL the slot
// returns. A Duplicate outcome with overwrite set falls back to the
// existing document: the directory's documents are listed, matched by
// exact name, and the slot is re-requested against the matched document's
// id before streaming. Duplicate without overwrite, and every other
// non-Success outcome, is returned unchanged.
func (c *Client) Upload(path, directoryID, name string, tags []string, overwrite bool) envelope.Envelope {
	file, err := os.Open(path)
	if err != nil {
		return envelope.Failed(err.Error())
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return envelope.Failed(err.Error())
	}
	size := info.Size()

	request := uploadRequest{
		Name:          name,
		Size:          size,
		DirectoryID:   directoryID,
		AccessToken:   c.accessToken,
		TransactionID: GenerateTransactionID(),
		Tags:          tags,
	}

	resp := c.post(epUpload, request)
	switch {
	case resp.IsSuccess():
		return c.streamUpload(resp, file, size, name, resp.String("documentId"))

	case resp.Is(envelope.StatusDuplicate) && overwrite:
		listing := c.readDirectory(directoryID)
		for _, item := range listing.Get("result.documents").Array() {
			if item.Get("name").String() != name {
				continue
			}
			documentID := item.Get("documentId").String()
			if documentID == "" {
				continue
			}
			slot := c.put(epUpload+"/"+documentID, request)
			if !slot.IsSuccess() {
				return slot
			}
			return c.streamUpload(slot, file, size, name, documentID)
		}
		return resp

	default:
		return resp
	}
}

// streamUpload performs the second phase: streaming size bytes from src to
// the transfer URL carried by the slot envelope. The slot endpoint often
// answers the stream with an empty body, so a 2xx completion is reported
// as Success carrying the known document id rather than being normalized.
func (c *Client) streamUpload(slot envelope.Envelope, src io.Reader, size int64, name, documentID string) envelope.Envelope {
	target := slot.String("url")
	if target == "" {
		return envelope.Failed("transfer slot carried no upload URL")
	}

	call, err := c.rest.PutStream(target, src, size, c.progressFunc(name))
	if err != nil {
		return envelope.Failed(err.Error())
	}
	c.history = append(c.history, call)

	if call.Code >= 400 {
		return envelope.Normalize(call.Body)
	}
	resp := envelope.Success()
	if documentID != "" {
		resp = resp.With("documentId", documentID)
	}
	return resp
}

// progressFunc returns the caller-supplied progress callback, or one that
// logs percentage milestones for the named file.
func (c *Client) progressFunc(name string) transport.ProgressFunc {
	if c.progress != nil {
		return c.progress
	}
	return func(written, total int64) {
		percent := int64(100)
		if total > 0 {
			percent = written * 100 / total
		}
		c.logger.Info().
			Str("file", name).
			Int64("percent", percent).
			Msg("upload progress")
	}
}

// UploadDocument stores a JSON payload as a document named name in the
// given directory. The payload is base64-encoded and posted inline as
// content; there is no second phase.
func (c *Client) UploadDocument(content []byte, directoryID, name string, tags []string) envelope.Envelope {
	return c.post(epDocument, documentCreateRequest{
		Name:          name,
		Content:       base64.StdEncoding.EncodeToString(content),
		DirectoryID:   directoryID,
		AccessToken:   c.accessToken,
		TransactionID: GenerateTransactionID(),
		Tags:          tags,
	})
}
