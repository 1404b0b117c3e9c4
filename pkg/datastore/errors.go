package datastore

import "github.com/specs-feup/specs-go/pkg/errcode"

// Store errors.
var (
	// ErrTypeMismatch indicates a value incompatible with a key's type.
	ErrTypeMismatch = errcode.New("SP-STORE-4001", "value type not compatible with key")

	// ErrNotPresent indicates a replace on a key with no value.
	ErrNotPresent = errcode.New("SP-STORE-4040", "no value for key")

	// ErrMissingValue indicates a strict read with neither value nor default.
	ErrMissingValue = errcode.New("SP-STORE-4041", "missing value in strict store")

	// ErrAlreadyPresent indicates an add on a key that already has a value.
	ErrAlreadyPresent = errcode.New("SP-STORE-4090", "value already present for key")
)

// Key errors.
var (
	// ErrMissingDecoder indicates a string operation on a key without codec.
	ErrMissingDecoder = errcode.New("SP-KEY-4001", "no decoder set for key")

	// ErrDecode indicates the key's codec rejected the text.
	ErrDecode = errcode.New("SP-KEY-4002", "cannot decode value")

	// ErrNoPanel indicates a key without a panel provider.
	ErrNoPanel = errcode.New("SP-KEY-4041", "no panel defined for key")
)

// Definition errors.
var (
	// ErrUndefinedKey indicates a stored name missing from the definition.
	ErrUndefinedKey = errcode.New("SP-DEF-4040", "key not in definition")

	// ErrDuplicateKey indicates two keys with the same name in a definition.
	ErrDuplicateKey = errcode.New("SP-DEF-4090", "duplicate key in definition")
)
