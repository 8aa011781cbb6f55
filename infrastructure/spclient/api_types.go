package spclient

import (
	"encoding/json"
	"fmt"
)

// JSON shapes for SharePoint REST responses. Gosip responses are consumed
// through Normalized(), raw HTTP endpoints through the envelope helpers
// below.

type webJSON struct {
	Id    string `json:"Id"`
	Title string `json:"Title"`
	Url   string `json:"Url"`
}

type folderJSON struct {
	Name              string `json:"Name"`
	ServerRelativeUrl string `json:"ServerRelativeUrl"`
	ItemCount         int    `json:"ItemCount"`
	Exists            *bool  `json:"Exists"`
}

type fileJSON struct {
	UniqueId          string `json:"UniqueId"`
	Name              string `json:"Name"`
	ServerRelativeUrl string `json:"ServerRelativeUrl"`
	ETag              string `json:"ETag"`
	MajorVersion      int    `json:"MajorVersion"`
	MinorVersion      int    `json:"MinorVersion"`
	TimeCreated       string `json:"TimeCreated"`
	TimeLastModified  string `json:"TimeLastModified"`
}

type sitePageJSON struct {
	UniqueId       string `json:"UniqueId"`
	FileName       string `json:"FileName"`
	Title          string `json:"Title"`
	Url            string `json:"Url"`
	AbsoluteUrl    string `json:"AbsoluteUrl"`
	Version        string `json:"Version"`
	Modified       string `json:"Modified"`
	FirstPublished string `json:"FirstPublished"`
}

// Collection envelopes SharePoint emits depending on the OData mode:
// nometadata {"value":[...]}, verbose {"d":{"results":[...]}}, or a bare
// array. decodeCollection auto-detects all three and returns the raw
// elements plus a next-page link when the server pages the result.
func decodeCollection(data []byte) ([]json.RawMessage, string, error) {
	var plain struct {
		Value    []json.RawMessage `json:"value"`
		NextLink string            `json:"odata.nextLink"`
	}
	if err := json.Unmarshal(data, &plain); err == nil && plain.Value != nil {
		return plain.Value, plain.NextLink, nil
	}

	var verbose struct {
		D struct {
			Results []json.RawMessage `json:"results"`
			Next    string            `json:"__next"`
		} `json:"d"`
	}
	if err := json.Unmarshal(data, &verbose); err == nil && verbose.D.Results != nil {
		return verbose.D.Results, verbose.D.Next, nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, "", nil
	}

	return nil, "", fmt.Errorf("unrecognized collection payload")
}

// decodeObject unwraps a single-object payload, tolerating the verbose
// {"d": {...}} envelope.
func decodeObject(data []byte) (json.RawMessage, error) {
	var verbose struct {
		D json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(data, &verbose); err == nil && len(verbose.D) > 0 {
		return verbose.D, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("unrecognized object payload: %w", err)
	}
	return data, nil
}
