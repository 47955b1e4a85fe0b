package gridengine

// XML mirror structs for the qstat documents. Exported fields are required by
// encoding/xml but the types stay package private; callers only see the
// models package.

import (
	"encoding/xml"

	"gridtools/internal/pkg/client/gridengine/models"
)

// detailedJobInfo mirrors the document root of `qstat -xml -j <jobid>`.
type detailedJobInfo struct {
	XMLName     xml.Name `xml:"detailed_job_info"`
	DjobInfo    djobInfo `xml:"djob_info"`
	UnknownJobs *struct {
		Names []string `xml:"element>ST_name"`
	} `xml:"unknown_jobs"`
}

type djobInfo struct {
	Element djobElement `xml:"element"`
}

type djobElement struct {
	JobNumber    int64             `xml:"JB_job_number"`
	Owner        string            `xml:"JB_owner"`
	HardRequests []models.Resource `xml:"JB_hard_resource_list>qstat_l_requests"`
}

// jobInfoList mirrors `qstat -xml -u <user>`. Running jobs sit under
// queue_info, pending ones under job_info; only the running list is mapped.
// The XML decoder always yields a slice here, for one job_list element or
// for many.
type jobInfoList struct {
	XMLName xml.Name  `xml:"job_info"`
	Running []userJob `xml:"queue_info>job_list"`
}

type userJob struct {
	JobNumber string `xml:"JB_job_number"`
	State     string `xml:"state,attr"`
}
