package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/orphdat/orphdat/internal/model"
)

// legacyLinePattern matches one line of the legacy plain-text store format:
// "NAME: 32hexdigest" (spec §6).
var legacyLinePattern = regexp.MustCompile(`^(.+): ([0-9a-f]{32})$`)

// firstNonSpaceByte returns the first byte of data that is not ASCII
// whitespace, and false if data contains only whitespace.
func firstNonSpaceByte(data []byte) (byte, bool) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0, false
	}
	return trimmed[0], true
}

// parseStore dispatches between the JSON and legacy plain-text formats by
// peeking at the first non-whitespace byte (spec §4.5 read, §6): '{' means
// JSON, anything else means legacy.
func parseStore(storePath string, data []byte) (model.HashSet, error) {
	first, ok := firstNonSpaceByte(data)
	if !ok {
		return model.HashSet{}, nil
	}
	if first == '{' {
		return parseJSONStore(storePath, data)
	}
	return parseLegacyStore(storePath, data)
}

// jsonRecord mirrors HashRecord's JSON shape but leaves Version and Filename
// as pointers so parseJSONStore can detect absence and apply the spec's
// default-filling rules (missing version -> 1, missing filename -> the key).
type jsonRecord struct {
	Filename *string `json:"filename"`
	Size     int64   `json:"size"`
	Mtime    int64   `json:"mtime"`
	Md5      string  `json:"md5"`
	FullMd5  string  `json:"full_md5"`
	Version  *int    `json:"version"`
}

func parseJSONStore(storePath string, data []byte) (model.HashSet, error) {
	var raw map[string]jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedStoreError{Path: storePath, Reason: err.Error()}
	}

	set := make(model.HashSet, len(raw))
	for key, rec := range raw {
		filename := key
		if rec.Filename != nil && *rec.Filename != "" {
			filename = *rec.Filename
		}
		version := 1
		if rec.Version != nil {
			version = *rec.Version
		}
		record := &model.HashRecord{
			Filename: filename,
			Size:     rec.Size,
			Mtime:    rec.Mtime,
			Md5:      rec.Md5,
			FullMd5:  rec.FullMd5,
			Version:  version,
		}
		if record.StoreKey() != key {
			return nil, &MalformedStoreError{
				Path:   storePath,
				Reason: fmt.Sprintf("key %q does not match lowercased filename %q", key, filename),
			}
		}
		set[key] = record
	}
	return set, nil
}

func parseLegacyStore(storePath string, data []byte) (model.HashSet, error) {
	set := model.HashSet{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		match := legacyLinePattern.FindStringSubmatch(line)
		if match == nil {
			return nil, &MalformedStoreError{
				Path:   storePath,
				Reason: fmt.Sprintf("legacy line does not match \"NAME: hex\": %q", line),
			}
		}
		filename, digest := match[1], match[2]
		record := &model.HashRecord{
			Filename: filename,
			Md5:      digest,
			FullMd5:  digest,
			Version:  0,
		}
		set[record.StoreKey()] = record
	}
	if err := scanner.Err(); err != nil {
		return nil, &MalformedStoreError{Path: storePath, Reason: err.Error()}
	}
	return set, nil
}

// marshalStore renders set as pretty-printed, key-sorted JSON (spec §4.5
// write, §6). encoding/json already emits map keys in sorted order.
func marshalStore(set model.HashSet) ([]byte, error) {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
