package h5

import (
	"fmt"
)

//the same as the parent package's Error but avoids a circular import.
type errorInt interface {
	Error() string
	Decorate(string) []string
}

//Error is the general structure for HDF5 container errors. It fulfills
//the Error and FileError interfaces of the parent package.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("hdf5 file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file to which the failing container was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "h5") associated to the error
func (err Error) Format() string { return "h5" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

//errDecorate asserts that the error implements the parent package's Error
//and decorates it with the caller's name before returning it.
//If used with an unexpected error type, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(errorInt)
	err2.Decorate(caller)
	return err2
}

const (
	UnableToOpen       = "Unable to open file"
	BadSignature       = "File signature not found, not an HDF5 file"
	TruncatedFile      = "File ends inside a structure"
	BadSuperblock      = "Malformed or unsupported superblock"
	BadObjectHeader    = "Malformed object header"
	BadSymbolTable     = "Malformed symbol table"
	BadBTree           = "Malformed B-tree node"
	BadHeap            = "Malformed local heap"
	BadDataspace       = "Malformed dataspace message"
	BadDatatype        = "Malformed or unsupported datatype message"
	BadLayout          = "Malformed data layout message"
	BadPipeline        = "Malformed filter pipeline message"
	UnsupportedFeature = "File uses an HDF5 feature not supported by this reader"
	ChecksumMismatch   = "Metadata checksum does not match"
	KeyMissing         = "No dataset with the requested key"
	NotADataset        = "Object is not a dataset"
	WrongRank          = "Dataset rank does not match the request"
	FilterFailed       = "Chunk filter could not be applied"
	FileClosed         = "Operation on a closed file"
	WriterMisuse       = "Invalid arguments to writer"
)
