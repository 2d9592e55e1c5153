package prize

import (
	"encoding/json"
	"strconv"

	"github.com/calder-labs/prizedex/internal/db"
	"github.com/calder-labs/prizedex/internal/domain"
)

func documentKey(n int) string {
	return keyPrefix + strconv.Itoa(n)
}

func marshalPrize(p *domain.Prize) ([]byte, error) {
	if p.Laureates == nil {
		// keep the indexed JSONPath valid for prizes with no laureates
		p.Laureates = []domain.Laureate{}
	}
	return json.Marshal(p)
}

// unmarshalEntry decodes an FT.SEARCH hit. ON JSON indexes return the
// whole document under the "$" field.
func unmarshalEntry(entry db.SearchEntry) (domain.Prize, error) {
	raw, ok := entry.Fields["$"]
	if !ok {
		// some server versions label the root path "$." or return it as
		// the only field; fall back to the single field present
		for _, v := range entry.Fields {
			raw = v
			break
		}
	}

	var p domain.Prize
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.Prize{}, err
	}
	return p, nil
}
