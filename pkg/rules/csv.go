package rules

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okanmail/okan/pkg/message"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Rule table file names.
const (
	WhitelistFile          = "Whitelist.csv"
	AlertAddressFile       = "AlertAddressList.csv"
	AlertKeywordFile       = "AlertKeywordAndMessageList.csv"
	AutoCcBccKeywordFile   = "AutoCcBccKeywordList.csv"
	AutoCcBccRecipientFile = "AutoCcBccRecipientList.csv"
	NameAndDomainFile      = "NameAndDomains.csv"
)

// Supported CSV encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

const (
	defaultCSVFileMode      = 0o644
	defaultCSVDirectoryMode = 0o755
)

// Tables lists the rule table file names.
var Tables = []string{
	WhitelistFile,
	AlertAddressFile,
	AlertKeywordFile,
	AutoCcBccKeywordFile,
	AutoCcBccRecipientFile,
	NameAndDomainFile,
}

// CSVDir is a Provider reading one header-less CSV file per table from the directory at Path.
// Missing files load as empty tables, and rows with an empty first column are skipped.
type CSVDir struct {
	Path     string
	Encoding string // utf-8 (default) or shift_jis.
}

var _ Provider = &CSVDir{}

// Load implements Provider.
func (c *CSVDir) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.loadTable(snap, table); err != nil {
			return nil, err
		}
	}
	log.Debug().Str("module", "rules").Str("path", c.Path).Int("rows", snap.Len()).
		Msg("Loaded CSV rules")
	return snap, nil
}

func (c *CSVDir) loadTable(snap *Snapshot, table string) error {
	f, err := os.Open(filepath.Join(c.Path, table))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	r, err := decodingReader(f, c.Encoding)
	if err != nil {
		return err
	}
	if err := ReadTable(snap, table, r); err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	return nil
}

// ReadTable parses UTF-8 CSV rows of the named table and appends them to snap.
func ReadTable(snap *Snapshot, table string, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := cr.FieldPos(0)
		if err := appendRow(snap, table, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func appendRow(snap *Snapshot, table string, rec []string) error {
	col := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	// Every table keys on its first column.
	if col(0) == "" {
		return nil
	}
	switch table {
	case WhitelistFile:
		snap.Whitelist = append(snap.Whitelist, Whitelist{Fragment: col(0)})
	case AlertAddressFile:
		block, err := parseBool(col(1))
		if err != nil {
			return err
		}
		snap.AlertAddresses = append(snap.AlertAddresses,
			AlertAddress{Fragment: col(0), CannotSend: block})
	case AlertKeywordFile:
		block, err := parseBool(col(2))
		if err != nil {
			return err
		}
		snap.AlertKeywords = append(snap.AlertKeywords,
			AlertKeyword{Keyword: col(0), Message: col(1), CannotSend: block})
	case AutoCcBccKeywordFile:
		class, err := parseAutoClass(col(1))
		if err != nil {
			return err
		}
		snap.AutoCcBccKeywords = append(snap.AutoCcBccKeywords,
			AutoCcBccKeyword{Keyword: col(0), Class: class, Target: col(2)})
	case AutoCcBccRecipientFile:
		class, err := parseAutoClass(col(1))
		if err != nil {
			return err
		}
		snap.AutoCcBccRecipients = append(snap.AutoCcBccRecipients,
			AutoCcBccRecipient{Trigger: col(0), Class: class, Target: col(2)})
	case NameAndDomainFile:
		snap.NameAndDomains = append(snap.NameAndDomains,
			NameAndDomain{Name: col(0), Domain: col(1)})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return nil
}

// WriteTable renders the named table of snap as UTF-8 CSV.
func WriteTable(w io.Writer, snap *Snapshot, table string) error {
	var rows [][]string
	switch table {
	case WhitelistFile:
		for _, r := range snap.Whitelist {
			rows = append(rows, []string{r.Fragment})
		}
	case AlertAddressFile:
		for _, r := range snap.AlertAddresses {
			rows = append(rows, []string{r.Fragment, strconv.FormatBool(r.CannotSend)})
		}
	case AlertKeywordFile:
		for _, r := range snap.AlertKeywords {
			rows = append(rows, []string{r.Keyword, r.Message, strconv.FormatBool(r.CannotSend)})
		}
	case AutoCcBccKeywordFile:
		for _, r := range snap.AutoCcBccKeywords {
			rows = append(rows, []string{r.Keyword, classLabel(r.Class), r.Target})
		}
	case AutoCcBccRecipientFile:
		for _, r := range snap.AutoCcBccRecipients {
			rows = append(rows, []string{r.Trigger, classLabel(r.Class), r.Target})
		}
	case NameAndDomainFile:
		for _, r := range snap.NameAndDomains {
			rows = append(rows, []string{r.Name, r.Domain})
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSV exports every table of snap into dir, creating it if needed.
func WriteCSV(dir string, snap *Snapshot, encoding string) error {
	if err := os.MkdirAll(dir, defaultCSVDirectoryMode); err != nil {
		return err
	}
	for _, table := range Tables {
		if err := writeFile(filepath.Join(dir, table), snap, table, encoding); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

func writeFile(path string, snap *Snapshot, table, encoding string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultCSVFileMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w, err := encodingWriter(f, encoding)
	if err != nil {
		return err
	}
	if err := WriteTable(w, snap, table); err != nil {
		return err
	}
	return w.Close()
}

// decodingReader wraps r to produce UTF-8 from the named encoding.  A UTF-8 byte order mark is
// dropped.
func decodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch normalizeEncoding(encoding) {
	case EncodingUTF8:
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case EncodingShiftJIS:
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", encoding)
}

func encodingWriter(w io.Writer, encoding string) (io.WriteCloser, error) {
	switch normalizeEncoding(encoding) {
	case EncodingUTF8:
		return transform.NewWriter(w, unicode.UTF8.NewEncoder()), nil
	case EncodingShiftJIS:
		return transform.NewWriter(w, japanese.ShiftJIS.NewEncoder()), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", encoding)
}

func normalizeEncoding(encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return EncodingShiftJIS
	}
	return encoding
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func parseAutoClass(s string) (message.RecipientClass, error) {
	class, err := message.ParseRecipientClass(s)
	if err != nil {
		return 0, err
	}
	return class, checkAutoClass(class)
}

func classLabel(c message.RecipientClass) string {
	b, err := c.MarshalText()
	if err != nil {
		return ""
	}
	return string(b)
}
