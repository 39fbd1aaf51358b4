package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const jobIDSuffixLen = 9

// NewJobID returns job_<unix-millis>_<9 lowercase alphanumerics>.
func NewJobID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:jobIDSuffixLen]
	return "job_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
