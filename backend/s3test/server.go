// Package s3test runs an in-process S3 endpoint for exercising S3 clients.
//
// The server speaks the subset of the REST API the object clients use:
// bucket HEAD and location, ListObjectsV2, multi-object delete and single
// object PUT, GET, HEAD and DELETE. Multipart uploads are refused, and any
// operation can be made to fail. Buckets exist unless dropped.
package s3test

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Operation names used by Fail and Requests.
const (
	OpHeadBucket        = "HeadBucket"
	OpGetBucketLocation = "GetBucketLocation"
	OpListObjectsV2     = "ListObjectsV2"
	OpDeleteObjects     = "DeleteObjects"
	OpCreateMultipart   = "CreateMultipartUpload"
	OpPutObject         = "PutObject"
	OpGetObject         = "GetObject"
	OpHeadObject        = "HeadObject"
	OpDeleteObject      = "DeleteObject"
)

const xmlns = "http://s3.amazonaws.com/doc/2006-03-01/"

type object struct {
	data        []byte
	contentType string
	etag        string
	modified    time.Time
}

type failure struct {
	status int
	code   string
}

// Server is an httptest.Server backed by an in-memory object map.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	buckets  map[string]map[string]*object
	dropped  map[string]bool
	denied   map[string]bool
	failures map[string]failure
	requests []string
}

// NewServer starts a server; callers must Close it.
func NewServer() *Server {
	s := &Server{
		buckets:  make(map[string]map[string]*object),
		dropped:  make(map[string]bool),
		denied:   make(map[string]bool),
		failures: make(map[string]failure),
	}
	s.Server = httptest.NewServer(s)

	return s
}

// DropBucket makes every request against bucket answer NoSuchBucket.
func (s *Server) DropBucket(bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropped[bucket] = true
}

// DenyDelete makes multi-object deletes report an AccessDenied entry for key.
func (s *Server) DenyDelete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.denied[key] = true
}

// Fail answers every later request of op with an S3 error.
func (s *Server) Fail(op string, status int, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[op] = failure{status: status, code: code}
}

// Put stores an object directly.
func (s *Server) Put(bucket, key string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store(bucket, key, data, contentType)
}

// Keys returns the sorted keys stored in bucket.
func (s *Server) Keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.buckets[bucket]))
	for key := range s.buckets[bucket] {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

// Requests returns the operations served so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.requests...)
}

// Count returns how often op was requested.
func (s *Server) Count(op string) int {
	count := 0
	for _, request := range s.Requests() {
		if request == op {
			count++
		}
	}
	return count
}

func (s *Server) store(bucket, key string, data []byte, contentType string) *object {
	objects, exists := s.buckets[bucket]
	if !exists {
		objects = make(map[string]*object)
		s.buckets[bucket] = objects
	}

	sum := md5.Sum(data)
	obj := &object{
		data:        data,
		contentType: contentType,
		etag:        hex.EncodeToString(sum[:]),
		modified:    time.Now().UTC().Truncate(time.Second),
	}
	objects[key] = obj

	return obj
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key := parsePath(r.URL.Path)
	if bucket == "" {
		writeError(w, r, "NotImplemented", "Service operations are not supported", http.StatusNotImplemented)
		return
	}

	op := operation(r, key)
	if op == "" {
		writeError(w, r, "MethodNotAllowed", "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, op)

	if f, exists := s.failures[op]; exists {
		writeError(w, r, f.code, "Injected failure", f.status)
		return
	}

	if s.dropped[bucket] {
		writeError(w, r, "NoSuchBucket", "The specified bucket does not exist", http.StatusNotFound)
		return
	}

	switch op {
	case OpHeadBucket:
		w.WriteHeader(http.StatusOK)
	case OpGetBucketLocation:
		writeXML(w, http.StatusOK, locationConstraint{})
	case OpListObjectsV2:
		s.handleListObjectsV2(w, r, bucket)
	case OpDeleteObjects:
		s.handleDeleteObjects(w, r, bucket)
	case OpCreateMultipart:
		writeError(w, r, "NotImplemented", "Multipart uploads are not supported", http.StatusNotImplemented)
	case OpPutObject:
		s.handlePutObject(w, r, bucket, key)
	case OpGetObject, OpHeadObject:
		s.handleGetObject(w, r, bucket, key)
	case OpDeleteObject:
		delete(s.buckets[bucket], key)
		w.WriteHeader(http.StatusNoContent)
	}
}

func operation(r *http.Request, key string) string {
	query := r.URL.Query()

	if key == "" {
		switch {
		case r.Method == http.MethodHead:
			return OpHeadBucket
		case r.Method == http.MethodGet && query.Has("location"):
			return OpGetBucketLocation
		case r.Method == http.MethodGet && query.Get("list-type") == "2":
			return OpListObjectsV2
		case r.Method == http.MethodPost && query.Has("delete"):
			return OpDeleteObjects
		}
		return ""
	}

	switch r.Method {
	case http.MethodPost:
		if query.Has("uploads") {
			return OpCreateMultipart
		}
	case http.MethodPut:
		if !query.Has("uploadId") {
			return OpPutObject
		}
	case http.MethodGet:
		return OpGetObject
	case http.MethodHead:
		return OpHeadObject
	case http.MethodDelete:
		return OpDeleteObject
	}
	return ""
}

func (s *Server) handlePutObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	var body io.Reader = r.Body
	if streaming(r) {
		decoded, err := decodeChunked(r.Body)
		if err != nil {
			writeError(w, r, "IncompleteBody", err.Error(), http.StatusBadRequest)
			return
		}
		body = bytes.NewReader(decoded)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		writeError(w, r, "IncompleteBody", err.Error(), http.StatusBadRequest)
		return
	}

	obj := s.store(bucket, key, data, r.Header.Get("Content-Type"))

	w.Header().Set("ETag", strconv.Quote(obj.etag))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request, bucket, key string) {
	obj, exists := s.buckets[bucket][key]
	if !exists {
		writeError(w, r, "NoSuchKey", "The specified key does not exist", http.StatusNotFound)
		return
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
	w.Header().Set("Last-Modified", obj.modified.Format(http.TimeFormat))
	w.Header().Set("ETag", strconv.Quote(obj.etag))
	w.Header().Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodGet {
		w.Write(obj.data)
	}
}

// handleListObjectsV2 orders keys and folded prefixes together, as S3 does,
// and counts both against max-keys.
func (s *Server) handleListObjectsV2(w http.ResponseWriter, r *http.Request, bucket string) {
	query := r.URL.Query()
	prefix := query.Get("prefix")
	delimiter := query.Get("delimiter")

	maxKeys := 1000
	if mk := query.Get("max-keys"); mk != "" {
		if parsed, err := strconv.Atoi(mk); err == nil && parsed >= 0 {
			maxKeys = parsed
		}
	}

	var resume string
	if token := query.Get("continuation-token"); token != "" {
		decoded, err := base64.StdEncoding.DecodeString(token)
		if err != nil {
			writeError(w, r, "InvalidArgument", "The continuation token provided is incorrect", http.StatusBadRequest)
			return
		}
		resume = string(decoded)
	} else if after := query.Get("start-after"); after != "" {
		resume = "k:" + after
	}

	keys := make([]string, 0, len(s.buckets[bucket]))
	for key := range s.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	response := listBucketResult{
		Xmlns:     xmlns,
		Name:      bucket,
		Prefix:    prefix,
		Delimiter: delimiter,
		MaxKeys:   maxKeys,
	}

	last := ""
	count := 0
	for _, key := range keys {
		entry, folded := key, false
		if delimiter != "" {
			rest := strings.TrimPrefix(key, prefix)
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				entry, folded = prefix+rest[:idx+len(delimiter)], true
			}
		}

		if skipped(resume, key) {
			continue
		}
		if folded && last == "p:"+entry {
			continue
		}

		if count >= maxKeys {
			if count > 0 {
				response.IsTruncated = true
				response.NextContinuationToken = base64.StdEncoding.EncodeToString([]byte(last))
			}
			break
		}
		count++

		if folded {
			response.CommonPrefixes = append(response.CommonPrefixes, commonPrefix{Prefix: entry})
			last = "p:" + entry
			continue
		}

		obj := s.buckets[bucket][key]
		response.Contents = append(response.Contents, listEntry{
			Key:          key,
			LastModified: obj.modified.Format("2006-01-02T15:04:05.000Z"),
			ETag:         strconv.Quote(obj.etag),
			Size:         int64(len(obj.data)),
			StorageClass: "STANDARD",
		})
		last = "k:" + key
	}

	response.KeyCount = count
	response.ContinuationToken = query.Get("continuation-token")
	response.StartAfter = query.Get("start-after")

	writeXML(w, http.StatusOK, response)
}

// skipped reports whether a listing resumed after the marker has already
// returned key. Markers are "k:<key>" for objects and "p:<prefix>" for folded
// prefixes, whose whole subtree counts as returned.
func skipped(resume, key string) bool {
	switch {
	case resume == "":
		return false
	case strings.HasPrefix(resume, "p:"):
		marker := strings.TrimPrefix(resume, "p:")
		return key <= marker || strings.HasPrefix(key, marker)
	default:
		return key <= strings.TrimPrefix(resume, "k:")
	}
}

func (s *Server) handleDeleteObjects(w http.ResponseWriter, r *http.Request, bucket string) {
	var request deleteRequest
	if err := xml.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, r, "MalformedXML", "The XML you provided was not well-formed", http.StatusBadRequest)
		return
	}

	response := deleteResult{Xmlns: xmlns}
	for _, obj := range request.Objects {
		if s.denied[obj.Key] {
			response.Errors = append(response.Errors, deleteError{
				Key:     obj.Key,
				Code:    "AccessDenied",
				Message: "Access Denied",
			})
			continue
		}

		delete(s.buckets[bucket], obj.Key)
		if !request.Quiet {
			response.Deleted = append(response.Deleted, deletedObject{Key: obj.Key})
		}
	}

	writeXML(w, http.StatusOK, response)
}

func parsePath(path string) (bucket, key string) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "", ""
	}

	parts := strings.SplitN(path, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		key = parts[1]
	}

	return bucket, key
}

func streaming(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") ||
		strings.Contains(r.Header.Get("Content-Encoding"), "aws-chunked")
}

// decodeChunked strips the aws-chunked framing: "<hex-size>[;ext]\r\n<data>\r\n"
// repeated until a zero-sized chunk, optionally followed by trailers.
func decodeChunked(body io.Reader) ([]byte, error) {
	br := bufio.NewReader(body)

	var out bytes.Buffer
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read chunk header: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if idx := strings.IndexByte(line, ';'); idx != -1 {
			line = line[:idx]
		}

		size, err := strconv.ParseInt(strings.TrimSpace(line), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse chunk size %q: %w", line, err)
		}
		if size == 0 {
			return out.Bytes(), nil
		}

		if _, err := io.CopyN(&out, br, size); err != nil {
			return nil, fmt.Errorf("read chunk body: %w", err)
		}

		crlf := make([]byte, 2)
		if _, err := io.ReadFull(br, crlf); err != nil || string(crlf) != "\r\n" {
			return nil, fmt.Errorf("missing CRLF after chunk")
		}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}

	writeXML(w, status, errorResponse{
		Code:     code,
		Message:  message,
		Resource: r.URL.Path,
	})
}

func writeXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(v)
}

type listBucketResult struct {
	XMLName               xml.Name       `xml:"ListBucketResult"`
	Xmlns                 string         `xml:"xmlns,attr"`
	Name                  string         `xml:"Name"`
	Prefix                string         `xml:"Prefix"`
	Delimiter             string         `xml:"Delimiter,omitempty"`
	MaxKeys               int            `xml:"MaxKeys"`
	IsTruncated           bool           `xml:"IsTruncated"`
	KeyCount              int            `xml:"KeyCount"`
	Contents              []listEntry    `xml:"Contents"`
	CommonPrefixes        []commonPrefix `xml:"CommonPrefixes,omitempty"`
	NextContinuationToken string         `xml:"NextContinuationToken,omitempty"`
	ContinuationToken     string         `xml:"ContinuationToken,omitempty"`
	StartAfter            string         `xml:"StartAfter,omitempty"`
}

type commonPrefix struct {
	Prefix string `xml:"Prefix"`
}

type listEntry struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int64  `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

type locationConstraint struct {
	XMLName xml.Name `xml:"LocationConstraint"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
}

type deleteRequest struct {
	XMLName xml.Name `xml:"Delete"`
	Quiet   bool     `xml:"Quiet"`
	Objects []struct {
		Key string `xml:"Key"`
	} `xml:"Object"`
}

type deletedObject struct {
	Key string `xml:"Key"`
}

type deleteError struct {
	Key     string `xml:"Key"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

type deleteResult struct {
	XMLName xml.Name        `xml:"DeleteResult"`
	Xmlns   string          `xml:"xmlns,attr"`
	Deleted []deletedObject `xml:"Deleted"`
	Errors  []deleteError   `xml:"Error"`
}

type errorResponse struct {
	XMLName  xml.Name `xml:"Error"`
	Code     string   `xml:"Code"`
	Message  string   `xml:"Message"`
	Resource string   `xml:"Resource"`
}
