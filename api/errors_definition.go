//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 403, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, DON'T fill it in: that code was used in the past and shouldn't be reused.
var (
	ErrResourceNotFound   = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody      = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidSignature   = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid signature")}
	ErrMalformedExhibitID = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed exhibit ID")}
	ErrExhibitNotFound    = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("exhibit not found")}
	ErrInvalidWindow      = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid exhibit window")}
	ErrWindowClosed       = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("exhibit is not open")}
	ErrAlreadySignedIn    = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("already signed in")}
	ErrInvalidInputProof  = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid input proof")}
	ErrNotEligible        = Error{Code: 40012, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("not eligible to mint a pass")}
	ErrMalformedAddress   = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed address")}
	ErrDecryptionDenied   = Error{Code: 40014, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("decryption denied")}
	ErrMalformedParam     = Error{Code: 40015, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed parameter")}
	ErrMalformedHandle    = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed ciphertext handle")}
	ErrUnknownHandle      = Error{Code: 40017, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("unknown ciphertext handle")}
	ErrInvalidNonce       = Error{Code: 40018, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("invalid or reused schedule nonce")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrDecryptionUnavailable      = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("decryption service unavailable")}
	ErrStreamingUnsupported       = Error{Code: 50004, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("streaming unsupported")}
	ErrPassIssuerFailed           = Error{Code: 50005, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("pass issuer failed")}
)
