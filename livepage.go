package livepage

import (
	"github.com/gompdf/livepage/internal/document"
	"github.com/gompdf/livepage/internal/pagination"
	"github.com/gompdf/livepage/pkg/api"
)

type Session = api.Session
type Status = api.Status
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation

type Document = document.Document
type Block = document.Block
type Kind = document.Kind
type Transaction = document.Transaction

var (
	Open            = api.Open
	OpenSource      = api.OpenSource
	OpenWithOptions = api.OpenWithOptions
	DefaultOptions  = api.DefaultOptions
	PageSizeByName  = api.PageSizeByName

	NewDocument = document.New
	FromText    = document.FromText
)

var (
	WithPageSize        = api.WithPageSize
	WithMargin          = api.WithMargin
	WithGutter          = api.WithGutter
	WithContentHeight   = api.WithContentHeight
	WithMaxPages        = api.WithMaxPages
	WithInset           = api.WithInset
	WithDebounce        = api.WithDebounce
	WithInitialDelay    = api.WithInitialDelay
	WithFrameInterval   = api.WithFrameInterval
	WithStaleSlack      = api.WithStaleSlack
	WithDebug           = api.WithDebug
	WithLogger          = api.WithLogger
	WithResourcePath    = api.WithResourcePath
	WithStylesheet      = api.WithStylesheet
	WithStylesheetURL   = api.WithStylesheetURL
	WithTitle           = api.WithTitle
	WithAuthor          = api.WithAuthor
	WithSubject         = api.WithSubject
	WithKeywords        = api.WithKeywords
	WithPageNumbers     = api.WithPageNumbers
	WithAutosave        = api.WithAutosave
	WithPageOrientation = api.WithPageOrientation
	WithPageSizeA4      = api.WithPageSizeA4
	WithPageSizeA5      = api.WithPageSizeA5
	WithPageSizeLetter  = api.WithPageSizeLetter
	WithPageSizeLegal   = api.WithPageSizeLegal
)

var ErrClosed = api.ErrClosed

const (
	KindParagraph  = document.KindParagraph
	KindHeading    = document.KindHeading
	KindBlockquote = document.KindBlockquote
	KindCode       = document.KindCode
	KindListItem   = document.KindListItem

	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape
)

var (
	PageSizeLetter = pagination.PageSizeLetter
	PageSizeLegal  = pagination.PageSizeLegal
	PageSizeA4     = pagination.PageSizeA4
	PageSizeA5     = pagination.PageSizeA5
)
