package logging

const (
	// DefaultTraceHeader is the HTTP header used to propagate trace ids
	// between services when no custom header is configured.
	DefaultTraceHeader = "unnbound-trace-id"

	// RedactedValue replaces sensitive header values in logged records.
	RedactedValue = "[REDACTED]"

	emptyString = ""
)

// Top-level record fields. Every record carries these; caller-supplied
// fields can never overwrite them.
const (
	FieldLogID     = "logId"
	FieldLevel     = "level"
	FieldMessage   = "message"
	FieldType      = "type"
	FieldTraceID   = "traceId"
	FieldRequestID = "requestId"
	FieldError     = "error"
	FieldDuration  = "duration"
)

// Environment variables read once at Initialize. The three identifiers are
// stamped onto every record when set.
const (
	EnvWorkflowID   = "UNNBOUND_WORKFLOW_ID"
	EnvServiceID    = "UNNBOUND_SERVICE_ID"
	EnvDeploymentID = "UNNBOUND_DEPLOYMENT_ID"
	EnvLogLevel     = "UNNBOUND_LOG_LEVEL"
	EnvTraceHeader  = "UNNBOUND_TRACE_HEADER"
	EnvServiceName  = "UNNBOUND_SERVICE_NAME"
	EnvEnvironment  = "UNNBOUND_ENVIRONMENT"
)

// Kind-specific payload fields.
const (
	fieldURL              = "url"
	fieldMethod           = "method"
	fieldHeaders          = "headers"
	fieldClientIP         = "clientIp"
	fieldBody             = "body"
	fieldStatusCode       = "statusCode"
	fieldHost             = "host"
	fieldUsername         = "username"
	fieldOperation        = "operation"
	fieldPath             = "path"
	fieldStatus           = "status"
	fieldBytesTransferred = "bytesTransferred"
	fieldFilesListed      = "filesListed"
	fieldSourcePath       = "sourcePath"
	fieldInstance         = "instance"
	fieldVendor           = "vendor"
	fieldQuery            = "query"
	fieldRowsReturned     = "rowsReturned"
	fieldRowsAffected     = "rowsAffected"
	fieldWorkflowID       = "workflowId"
	fieldServiceID        = "serviceId"
	fieldDeploymentID     = "deploymentId"
	fieldService          = "service"
	fieldEnvironment      = "environment"
	fieldErrorChain       = "errorChain"
	fieldErrorRoot        = "errorRoot"
	fieldDump             = "dump"
	fieldDumpType         = "dumpType"
)

const (
	errMsgNilService    = "Logger service is nil."
	errMsgNilConfig     = "Logging config is nil."
	errMsgConfigInvalid = "Logging configuration is invalid."
)

// reservedFields are the common record fields that caller-supplied data
// (structured messages, WithField options) may never clobber.
var reservedFields = map[string]struct{}{
	FieldLogID:     {},
	FieldLevel:     {},
	FieldMessage:   {},
	FieldType:      {},
	FieldTraceID:   {},
	FieldRequestID: {},
	FieldError:     {},
	FieldDuration:  {},
}

func isReservedField(key string) bool {
	_, ok := reservedFields[key]
	return ok
}
