// Package mft is the public entry point of the toolkit. It parses the
// on-disk structures of the NTFS Master File Table and its directory indexes
// from three input shapes: a raw $MFT extraction, an NTFS volume image, and
// an isolated INDX record.
//
// Basic usage:
//
//	f, err := mft.Open("/evidence/mft.raw", types.Options{FileType: types.FileTypeMFT})
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//	err = f.Records(func(rec *mft.Record) error {
//		fmt.Println(rec.Path())
//		return nil
//	})
//
// The package parses structures only. It does not mount, repair, or write
// volumes, reassemble non-resident data, or decompress streams.
package mft
