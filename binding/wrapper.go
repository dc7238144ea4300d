package main

// #include <stdlib.h>
import "C"

import (
	"encoding/json"
	"unsafe"

	"github.com/steosofficial/hanalprep/analyzer"
)

var dictionaries *analyzer.Dictionaries

// CreateDictionaries загружает словари из HANALPREP_RSC_DIR (или ./rsc).
// Возвращает 0 при успехе и -1 при ошибке.
//
//export CreateDictionaries
func CreateDictionaries() C.int {
	d, err := analyzer.LoadDictionaries()
	if err != nil {
		return -1
	}
	dictionaries = d
	return 0
}

// MorphMatches возвращает JSON со всеми разборами префиксов текста.
//
//export MorphMatches
func MorphMatches(text *C.char) *C.char {
	if dictionaries == nil {
		return C.CString("[]")
	}
	matches := dictionaries.MorphMatches(C.GoString(text))
	if matches == nil {
		matches = []analyzer.MorphMatch{}
	}
	result, _ := json.Marshal(matches)
	return C.CString(string(result))
}

//export StateFeature
func StateFeature(tag, feature *C.char) C.float {
	if dictionaries == nil {
		return 0
	}
	return C.float(dictionaries.StateFeature(C.GoString(tag), C.GoString(feature)))
}

//export Transition
func Transition(from, to *C.char) C.float {
	if dictionaries == nil {
		return 0
	}
	return C.float(dictionaries.Transition(C.GoString(from), C.GoString(to)))
}

//export FreeString
func FreeString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

//export ReleaseDictionaries
func ReleaseDictionaries() {
	if dictionaries != nil {
		_ = dictionaries.Close()
		dictionaries = nil
	}
}

func main() {}
