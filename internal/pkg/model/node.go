package model

type Nodes []Node

// Node represents a row in node_table of the cluster inventory database.
type Node struct {
    Hostname   string `gorm:"column:hostname;primaryKey" json:"hostname"`
    ServiceTag string `gorm:"column:service_tag" json:"service_tag"`
    Rack       string `gorm:"column:rack" json:"rack"`
    Purchased  string `gorm:"column:purchased" json:"purchased"`
    Retired    int8   `gorm:"column:retired" json:"retired"`
}

func (Node) TableName() string { return "node_table" }
