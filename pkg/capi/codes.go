package capi

import "strconv"

// ErrorCode is a code carried in the error branch of a response envelope.
type ErrorCode int

// SuccessCode is a code carried in the result branch of a response envelope.
//
// The two namespaces overlap numerically: 22 is both CodeHasActiveTrial and
// AccountUpdated. Always interpret a code together with the branch it came
// from; the Go type records that branch.
type SuccessCode int

const (
	CodeEmptyAccount     ErrorCode = 1
	CodeInvalidAccount   ErrorCode = 2
	CodeEmptyEmail       ErrorCode = 3
	CodeInvalidEmail     ErrorCode = 4
	CodeEmailExists      ErrorCode = 5
	CodeEmptyURL         ErrorCode = 6
	CodeInvalidURL       ErrorCode = 7
	CodeURLExists        ErrorCode = 8
	CodeUnavailable      ErrorCode = 9
	CodeEmptyLogin       ErrorCode = 10
	CodeInvalidLogin     ErrorCode = 11
	CodeInvalidAffiliate ErrorCode = 15
	CodeInvalidService   ErrorCode = 16
	CodeAccountFound     ErrorCode = 17
	CodeEmptyParameter   ErrorCode = 19
	CodeInvalidParameter ErrorCode = 20
	CodeHasActiveTrial   ErrorCode = 22
	CodeNotFound         ErrorCode = 404
)

const (
	CodeURLAvailable   SuccessCode = 12
	CodeAccountCreated SuccessCode = 13
	CodeSuccess        SuccessCode = 14
	CodeCompanyMoved   SuccessCode = 18
	CodeAccountUpdated SuccessCode = 22
)

var errorCodeNames = map[ErrorCode]string{
	CodeEmptyAccount:     "empty account",
	CodeInvalidAccount:   "invalid account",
	CodeEmptyEmail:       "empty email",
	CodeInvalidEmail:     "invalid email",
	CodeEmailExists:      "email exists",
	CodeEmptyURL:         "empty url",
	CodeInvalidURL:       "invalid url",
	CodeURLExists:        "url exists",
	CodeUnavailable:      "unavailable",
	CodeEmptyLogin:       "empty login",
	CodeInvalidLogin:     "invalid login",
	CodeInvalidAffiliate: "invalid affiliate",
	CodeInvalidService:   "invalid service",
	CodeAccountFound:     "account found",
	CodeEmptyParameter:   "empty parameter",
	CodeInvalidParameter: "invalid parameter",
	CodeHasActiveTrial:   "has active trial account",
	CodeNotFound:         "not found",
}

var successCodeNames = map[SuccessCode]string{
	CodeURLAvailable:   "url available",
	CodeAccountCreated: "account created",
	CodeSuccess:        "success",
	CodeCompanyMoved:   "company moved",
	CodeAccountUpdated: "account updated",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "error code " + strconv.Itoa(int(c))
}

func (c SuccessCode) String() string {
	if name, ok := successCodeNames[c]; ok {
		return name
	}
	return "success code " + strconv.Itoa(int(c))
}
