package models

// Resource is one (name, value) pair from a job's hard resource request list,
// e.g. {"h_rt", "86400"}.
type Resource struct {
	Name  string `xml:"CE_name" json:"name"`
	Value string `xml:"CE_stringval" json:"value"`
}

// JobDetail is the subset of `qstat -xml -j <jobid>` this toolkit cares about.
// Unknown is set when the scheduler reports the job id in <unknown_jobs>.
type JobDetail struct {
	JobID     string     `json:"jobid"`
	Owner     string     `json:"owner"`
	Resources []Resource `json:"resources"`
	Unknown   bool       `json:"unknown"`
}

// Tasks is a slice of Task rows.
type Tasks []Task

// Task is one running-task line of plain `qstat -u <owner>` output.
// TaskID is 0 when the scheduler omitted the ja-task-ID column, which it
// does for non-array jobs.
type Task struct {
	JobID     string `json:"jobid"`     // 作业ID
	Priority  string `json:"priority"`  // 优先级
	Name      string `json:"name"`      // 作业名称
	User      string `json:"user"`      // 用户
	State     string `json:"state"`     // 状态
	StartDate string `json:"startdate"` // 启动日期 MM/DD/YYYY
	StartTime string `json:"starttime"` // 启动时间 HH:MM:SS
	Queue     string `json:"queue"`     // 队列
	Slots     string `json:"slots"`     // 资源个数
	TaskID    int    `json:"taskid"`    // 数组任务ID
}
