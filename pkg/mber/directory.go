package mber

import (
	"regexp"
	"strings"

	"github.com/mber/mber-go/pkg/envelope"
)

var repeatedSlashes = regexp.MustCompile(`//+`)

type directoryCreateRequest struct {
	Name          string `json:"name"`
	Parent        string `json:"parent"`
	Alias         string `json:"alias"`
	AccessToken   string `json:"access_token"`
	TransactionID string `json:"transactionId"`
}

// MakePath creates the folder hierarchy named by path, starting from the
// application root. Repeated separators are collapsed and leading and
// trailing separators are trimmed before the path is split. Each segment
// is created in order; the first non-Success outcome aborts the walk and
// is returned. On full success the envelope carries the leaf directory's
// id as "directoryId".
func (c *Client) MakePath(path string) envelope.Envelope {
	path = repeatedSlashes.ReplaceAllString(path, "/")
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")

	parent := c.applicationID
	alias := ""
	var resp envelope.Envelope
	for _, folder := range strings.Split(path, "/") {
		// The cumulative alias doubles as the service-side dedup key
		// for the whole prefix.
		alias += folder + "/"
		resp = c.makeDirectory(folder, parent, alias)
		if !resp.IsSuccess() {
			break
		}
		parent = resp.String("directoryId")
	}
	return resp
}

// makeDirectory creates one folder under parent, resolving conflicts so
// the call is effectively idempotent:
//
//  1. Probe the double-quoted form of the alias. The service's lookup-side
//     dedup key quotes aliases once more than creation does; this is a
//     compatibility shim, preserved exactly. A hit short-circuits with the
//     alias standing in as the directory id.
//  2. Create. Success is returned as-is.
//  3. On Duplicate, look up the plain alias; a hit resolves the same way.
//  4. Failing that, list the parent's folders and match by exact name.
//     With no match the original conflict envelope is propagated.
func (c *Client) makeDirectory(folder, parent, alias string) envelope.Envelope {
	probe := c.readDirectory(aliasMarker + alias)
	if probe.IsSuccess() {
		return probe.With("directoryId", alias)
	}

	resp := c.post(epDirectory, directoryCreateRequest{
		Name:          folder,
		Parent:        parent,
		Alias:         alias,
		AccessToken:   c.accessToken,
		TransactionID: GenerateTransactionID(),
	})
	if !resp.Is(envelope.StatusDuplicate) {
		return resp
	}

	lookup := c.readDirectory(alias)
	if lookup.IsSuccess() {
		return lookup.With("directoryId", alias)
	}
	if id := c.listDirectories(parent)[folder]; id != "" {
		return resp.WithStatus(envelope.StatusSuccess).With("directoryId", id)
	}
	return resp
}

// readDirectory fetches a folder by identifier. Anything that is not a
// service-issued id is treated as an alias and gains the alias marker; an
// already-marked value gains a second marker, which is what the probe in
// makeDirectory relies on.
func (c *Client) readDirectory(folder string) envelope.Envelope {
	id := folder
	if !isUUID(folder) {
		id = aliasMarker + folder
	}
	return c.get(epDirectory+"/"+id, map[string]string{
		"access_token": c.accessToken,
	})
}

// listDirectories returns the name-to-id mapping of a folder's immediate
// subfolders. Missing payloads yield an empty map.
func (c *Client) listDirectories(folder string) map[string]string {
	resp := c.readDirectory(folder)
	directories := make(map[string]string)
	for _, item := range resp.Get("result.directories").Array() {
		directories[item.Get("name").String()] = item.Get("directoryId").String()
	}
	return directories
}
