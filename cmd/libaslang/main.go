// Command libaslang builds the C embedding surface:
//
//	go build -buildmode=c-shared -o libaslang.so ./cmd/libaslang
//
// Hosts call ASExecute(source) to run a program and receive either its
// captured output or an "Error: ..." message, and must release every
// returned buffer with ASFreeString.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	aslang "github.com/ashuwhy/lang.as"
)

//export ASExecute
func ASExecute(code *C.char) *C.char {
	if code == nil {
		return nil
	}
	out, err := aslang.Execute(C.GoString(code))
	if err != nil {
		return C.CString("Error: " + err.Error())
	}
	return C.CString(out)
}

//export ASFreeString
func ASFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func main() {}
