package logging

import (
	"context"
	"fmt"
	"time"
)

// SFTPOperation enumerates the file-transfer operations a record can name.
type SFTPOperation string

const (
	SFTPUpload   SFTPOperation = "upload"
	SFTPDownload SFTPOperation = "download"
	SFTPList     SFTPOperation = "list"
	SFTPDelete   SFTPOperation = "delete"
	SFTPRename   SFTPOperation = "rename"
	SFTPStat     SFTPOperation = "stat"
)

// TransactionStatus is the outcome of a transaction record.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "success"
	StatusFailure TransactionStatus = "failure"
)

// DBVendor enumerates the database engines a query record can name.
type DBVendor string

const (
	VendorPostgres DBVendor = "postgres"
	VendorMySQL    DBVendor = "mysql"
	VendorMSSQL    DBVendor = "mssql"
	VendorMongoDB  DBVendor = "mongodb"
)

// SFTPTransaction describes one SFTP operation against a remote host.
// Zero-valued optional counters and the empty SourcePath are omitted from
// the record.
type SFTPTransaction struct {
	Host      string
	Username  string
	Operation SFTPOperation
	Path      string
	Status    TransactionStatus

	BytesTransferred int64
	FilesListed      int
	// SourcePath is the original path of a rename.
	SourcePath string
}

func (tx SFTPTransaction) payload() map[string]any {
	p := map[string]any{
		fieldHost:      tx.Host,
		fieldUsername:  tx.Username,
		fieldOperation: string(tx.Operation),
		fieldPath:      tx.Path,
		fieldStatus:    string(tx.Status),
	}
	if tx.BytesTransferred > 0 {
		p[fieldBytesTransferred] = tx.BytesTransferred
	}
	if tx.FilesListed > 0 {
		p[fieldFilesListed] = tx.FilesListed
	}
	if tx.SourcePath != emptyString {
		p[fieldSourcePath] = tx.SourcePath
	}
	return p
}

func (tx SFTPTransaction) message() string {
	return fmt.Sprintf("sftp %s %s", tx.Operation, tx.Path)
}

// DBQueryTransaction describes one database query. Query text is logged
// verbatim; sanitizing bound values is the caller's responsibility.
// Zero-valued row counters and the empty Query are omitted from the
// record.
type DBQueryTransaction struct {
	Instance string
	Vendor   DBVendor
	Query    string
	Status   TransactionStatus

	RowsReturned int
	RowsAffected int64
}

func (tx DBQueryTransaction) payload() map[string]any {
	p := map[string]any{
		fieldInstance: tx.Instance,
		fieldVendor:   string(tx.Vendor),
		fieldStatus:   string(tx.Status),
	}
	if tx.Query != emptyString {
		p[fieldQuery] = tx.Query
	}
	if tx.RowsReturned > 0 {
		p[fieldRowsReturned] = tx.RowsReturned
	}
	if tx.RowsAffected > 0 {
		p[fieldRowsAffected] = tx.RowsAffected
	}
	return p
}

func (tx DBQueryTransaction) message() string {
	return fmt.Sprintf("db %s %s", tx.Vendor, tx.Instance)
}

// transactionLevel maps a transaction outcome to severity: failures are
// errors, everything else is info.
func transactionLevel(status TransactionStatus) Level {
	if status == StatusFailure {
		return LevelError
	}
	return LevelInfo
}

// SFTPTransaction logs one SFTP transaction record. Severity follows the
// outcome unless WithLevel overrides it; duration prefers WithDuration,
// then now minus WithStartTime, then zero.
func (s *Service) SFTPTransaction(ctx context.Context, tx SFTPTransaction, opts ...Option) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	o := applyOptions(opts)
	rec := newRecord(KindSFTPTransaction, transactionLevel(tx.Status), nil, o)
	rec.message = tx.message()
	rec.traceID = s.resolveTraceID(ctx, o)
	rec.requestID = o.requestID
	rec.resolveDuration(o, time.Time{})
	rec.payload = tx.payload()
	s.emit(rec)
}

// DBQueryTransaction logs one database query record with the same
// severity and duration rules as SFTPTransaction.
func (s *Service) DBQueryTransaction(ctx context.Context, tx DBQueryTransaction, opts ...Option) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	o := applyOptions(opts)
	rec := newRecord(KindDBQueryTransaction, transactionLevel(tx.Status), nil, o)
	rec.message = tx.message()
	rec.traceID = s.resolveTraceID(ctx, o)
	rec.requestID = o.requestID
	rec.resolveDuration(o, time.Time{})
	rec.payload = tx.payload()
	s.emit(rec)
}
