package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// Configuration errors
	ConfigValidationError
	ConfigUserAgentError
	ConfigPageSizeError

	// Filesystem errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableCheckError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError

	// Fetcher errors
	FetchRequestError
	FetchStatusError
	FetchRetriesExhaustedError

	// Query service / document API errors
	QueryServiceError
	QueryDecodeError
	EntityMissingError
	EntityDecodeError
	PageMissingError

	// Cache errors
	CacheProbeError
	CacheUpsertError
	CacheReadError

	// Crawl errors
	CrawlQueryError
	CrawlCommitError
	CrawlCancelledError
	CrawlUnknownPlatformError
	CrawlMalformedPageError

	// Enrichment errors
	EnrichLoadError
	EnrichUpdateError

	// Normalization errors
	NormalizeRegistryError
	NormalizeLoadError
	NormalizeStampError

	// Writer errors
	WriteBatchError
	WriteConflictRetriesError

	// Report errors
	ReportScoresError
	ReportExportError
	ReportCoverageQueryError
)
