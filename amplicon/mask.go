package amplicon

import (
	"os"
	"strconv"
	"strings"

	"github.com/dasnellings/ampliconTools/apperr"
	log "github.com/sirupsen/logrus"
	"github.com/vertgenlab/gonomics/bed"
	"github.com/vertgenlab/gonomics/fileio"
)

// Mask holds low-complexity regions keyed on amplicon id. Regions are 0-based,
// half-open, sorted, and non-overlapping. Amplicons without regions are absent.
type Mask map[string][]bed.Bed

// Regions returns the masked regions of amplicon id, or nil.
func (m Mask) Regions(id string) []bed.Bed {
	return m[id]
}

// ReadMask parses a mask file. BED-like files hold (amplicon, start, end) per line.
// Files whose first line starts with '>' are read as dustmasker interval output,
// where each '>amplicon' header is followed by 'start - end' lines with inclusive ends.
// A blank path or an absent file yields an empty mask.
func ReadMask(file string) (mask Mask, err error) {
	mask = make(Mask)
	if file == "" {
		return mask, nil
	}
	if _, err = os.Stat(file); os.IsNotExist(err) {
		log.Printf("no mask data found at %s", file)
		return mask, nil
	} else if err != nil {
		return nil, apperr.Config(file, err)
	}
	defer apperr.Catch(file, &err)

	var regions []bed.Bed
	if isDustmasker(file) {
		regions, err = readDustmasker(file)
		if err != nil {
			return nil, err
		}
	} else {
		regions = bed.Read(file)
	}

	byAmplicon := make(map[string][]bed.Bed)
	for _, r := range regions {
		if r.ChromStart < 0 || r.ChromEnd <= r.ChromStart {
			return nil, apperr.Configf(file, "invalid mask interval %s:%d-%d", r.Chrom, r.ChromStart, r.ChromEnd)
		}
		byAmplicon[r.Chrom] = append(byAmplicon[r.Chrom], r)
	}
	for id := range byAmplicon {
		mask[id] = bed.MergeHighMem(byAmplicon[id], false, false)
	}
	return mask, nil
}

func isDustmasker(file string) bool {
	f := fileio.EasyOpen(file)
	defer f.Close()
	peek, err := fileio.EasyPeekReal(f, 1)
	return err == nil && peek[0] == '>'
}

func readDustmasker(file string) ([]bed.Bed, error) {
	var answer []bed.Bed
	var line, id string
	var done bool
	var start, end int
	var err error
	f := fileio.EasyOpen(file)
	defer f.Close()
	for line, done = fileio.EasyNextRealLine(f); !done; line, done = fileio.EasyNextRealLine(f) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			id = ""
			if words := strings.Fields(line[1:]); len(words) > 0 {
				id = words[0]
			}
			continue
		}
		coords := strings.Split(line, "-")
		if id == "" || len(coords) != 2 {
			return nil, apperr.Configf(file, "malformed dustmasker line %q", line)
		}
		if start, err = strconv.Atoi(strings.TrimSpace(coords[0])); err != nil {
			return nil, apperr.Config(file, err)
		}
		if end, err = strconv.Atoi(strings.TrimSpace(coords[1])); err != nil {
			return nil, apperr.Config(file, err)
		}
		answer = append(answer, bed.Bed{Chrom: id, ChromStart: start, ChromEnd: end + 1, FieldsInitialized: 3})
	}
	return answer, nil
}
