package i18n

// Texts use named placeholders such as {count}; they are mapped to the
// translator's positional parameters when the catalog is registered.
// day_<n> keys are filled from the locale's weekday names.
var catalog = map[string]map[string]string{
	"en": {
		"app_title":           "Campus Shuttle",
		"subtitle":            "Live timetable",
		"direction_sn":        "South → North",
		"direction_ns":        "North → South",
		"schedule_info_title": "About this timetable",
		"schedule_info_text":  "Coloured runs operate on the listed days only. Bus positions are estimated from the timetable, not tracked.",
		"displaying_runs":     "Showing {count} runs for {date}",
		"selected_run":        "Selected run",
		"next_departure":      "Next departure",
		"timetable":           "Timetable",
		"min_suffix":          "min",
		"mins":                "mins",
		"countdown_min":       "{minutes} min",
		"departs_in":          "in {minutes} min",
		"no_more_buses":       "No more buses today",
		"no_runs":             "No service on this day",
		"start":               "Start",
		"arriving_in":         "Arriving",
		"departed":            "Departed",
		"standard":            "Standard",
		"today":               "Today",
		"tomorrow":            "Tomorrow",
		"show_upcoming":       "Upcoming only",
		"show_all":            "Show all",
		"view_past":           "View earlier runs",
		"no_buses_msg":        "No more scheduled buses",
		"live":                "Live",
		"preview":             "Preview",
		"clear_preview":       "Back to live",
		"night_route":         "Night route, gate 9 closed",
		"install_app":         "Install the app",
		"install_desc":        "Add the shuttle board to your home screen for offline access.",
		"install_ios_instr":   "Tap Share, then",
		"install_ios_action":  "Add to Home Screen",
		"install_btn":         "Install",
		"dismiss":             "Not now",
		"short_sc_9":          "SC Gate 9",
		"name_sc_9":           "South Campus Gate 9",
		"short_sc_2":          "SC Gate 2",
		"name_sc_2":           "South Campus Gate 2",
		"short_nc_main":       "NC Main",
		"name_nc_main":        "North Campus Main Gate",
	},
	"zh": {
		"app_title":           "校园班车",
		"subtitle":            "实时时刻表",
		"direction_sn":        "南校区 → 北校区",
		"direction_ns":        "北校区 → 南校区",
		"schedule_info_title": "时刻表说明",
		"schedule_info_text":  "彩色班次仅在标注日期运行。车辆位置根据时刻表推算，并非实时定位。",
		"displaying_runs":     "{date} 共 {count} 班",
		"selected_run":        "已选班次",
		"next_departure":      "下一班",
		"timetable":           "时刻表",
		"min_suffix":          "分钟",
		"mins":                "分钟",
		"countdown_min":       "{minutes} 分钟",
		"departs_in":          "{minutes} 分钟后发车",
		"no_more_buses":       "今日班车已结束",
		"no_runs":             "当日无班车",
		"start":               "起点",
		"arriving_in":         "即将到站",
		"departed":            "已发车",
		"standard":            "常规",
		"today":               "今天",
		"tomorrow":            "明天",
		"show_upcoming":       "仅看未发车",
		"show_all":            "显示全部",
		"view_past":           "查看已发班次",
		"no_buses_msg":        "暂无待发班车",
		"live":                "实时",
		"preview":             "预览",
		"clear_preview":       "返回实时",
		"night_route":         "夜间线路，南9门关闭",
		"install_app":         "安装应用",
		"install_desc":        "将班车看板添加到主屏幕，离线也能查看。",
		"install_ios_instr":   "点击分享按钮，然后选择",
		"install_ios_action":  "添加到主屏幕",
		"install_btn":         "安装",
		"dismiss":             "暂不",
		"short_sc_9":          "南9门",
		"name_sc_9":           "南校区9号门",
		"short_sc_2":          "南2门",
		"name_sc_2":           "南校区2号门",
		"short_nc_main":       "北正门",
		"name_nc_main":        "北校区正门",
	},
}
